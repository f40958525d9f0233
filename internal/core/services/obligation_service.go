package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propfolio/property_mgmt_app/internal/apperrors"
	"github.com/propfolio/property_mgmt_app/internal/core/domain"
	portsrepo "github.com/propfolio/property_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
	"github.com/propfolio/property_mgmt_app/internal/dto"
	"github.com/propfolio/property_mgmt_app/internal/utils/accounting"
	"github.com/propfolio/property_mgmt_app/internal/utils/pagination"
)

// obligationService is the read-and-schedule side of tenant finances:
// balances, ledgers, aging, statements and payment plans. All money movement
// it needs goes through the ledger service.
type obligationService struct {
	BaseService
	ledgerSvc     portssvc.LedgerSvcFacade
	balanceRepo   portsrepo.BalanceRepositoryFacade
	chargeRepo    portsrepo.ChargeRepositoryFacade
	reportingRepo portsrepo.ReportingRepositoryFacade
	planRepo      portsrepo.PaymentPlanRepositoryFacade
	publisher     portssvc.EventPublisher
}

// NewObligationService creates a new TenantObligationService.
func NewObligationService(
	ledgerSvc portssvc.LedgerSvcFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	chargeRepo portsrepo.ChargeRepositoryFacade,
	reportingRepo portsrepo.ReportingRepositoryFacade,
	planRepo portsrepo.PaymentPlanRepositoryFacade,
	publisher portssvc.EventPublisher,
) portssvc.TenantObligationSvcFacade {
	return &obligationService{
		ledgerSvc:     ledgerSvc,
		balanceRepo:   balanceRepo,
		chargeRepo:    chargeRepo,
		reportingRepo: reportingRepo,
		planRepo:      planRepo,
		publisher:     publisher,
	}
}

var _ portssvc.TenantObligationSvcFacade = (*obligationService)(nil)

// publish emits events best-effort; the financial operation has already
// committed, so delivery failures are logged and swallowed.
func (s *obligationService) publish(ctx context.Context, events ...domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.LogWarn(ctx, "Failed to publish events", slog.String("error", err.Error()))
	}
}

// currentBalance reads the materialized balance for a dimension, or the sum
// across a tenant's dimensions when propertyID is empty.
func (s *obligationService) currentBalance(ctx context.Context, tenantID, propertyID string) (decimal.Decimal, error) {
	if propertyID != "" {
		bal, err := s.balanceRepo.GetBalance(ctx, tenantID, propertyID)
		if err != nil {
			return decimal.Zero, err
		}
		return bal.Balance, nil
	}

	balances, err := s.balanceRepo.GetBalancesForTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	return total, nil
}

// GetTenantBalance returns the materialized balance without touching posting
// rows.
func (s *obligationService) GetTenantBalance(ctx context.Context, tenantID, propertyID string) (*dto.TenantBalanceResponse, error) {
	balance, err := s.currentBalance(ctx, tenantID, propertyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read tenant balance", slog.String("tenant_id", tenantID))
		return nil, err
	}
	return &dto.TenantBalanceResponse{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Balance:    balance,
	}, nil
}

// GetTenantLedger returns tenant postings newest-first with running balances
// folded backward from the current balance, so the top line always matches
// what the tenant owes right now.
func (s *obligationService) GetTenantLedger(ctx context.Context, tenantID string, filters portsrepo.LedgerQueryFilters) (*dto.TenantLedgerResponse, error) {
	lines, nextToken, err := s.reportingRepo.FindTenantPostings(ctx, tenantID, filters)
	if err != nil {
		s.LogError(ctx, err, "Failed to read tenant ledger", slog.String("tenant_id", tenantID))
		return nil, err
	}

	baseline, err := s.ledgerBaseline(ctx, tenantID, filters)
	if err != nil {
		return nil, err
	}

	// Fold top-down: each line's running balance is the balance after that
	// posting, so the next (older) line's is baseline minus this amount.
	running := baseline
	for i := range lines {
		lines[i].RunningBalance = running
		running = running.Sub(lines[i].Posting.Amount)
	}

	return &dto.TenantLedgerResponse{
		TenantID:  tenantID,
		Lines:     dto.ToLedgerLineResponses(lines),
		NextToken: nextToken,
	}, nil
}

// ledgerBaseline computes the balance as of the newest line the current page
// shows. With a cursor that is the live balance minus every posting newer
// than the cursor position; otherwise the window end bounds it.
func (s *obligationService) ledgerBaseline(ctx context.Context, tenantID string, filters portsrepo.LedgerQueryFilters) (decimal.Decimal, error) {
	current, err := s.currentBalance(ctx, tenantID, filters.PropertyID)
	if err != nil {
		return decimal.Zero, err
	}

	if filters.NextToken != nil {
		entryDate, createdAt, err := pagination.DecodeToken(*filters.NextToken)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		newer, err := s.reportingRepo.SumPostingsNewerThan(ctx, tenantID, filters.PropertyID, entryDate, createdAt)
		if err != nil {
			return decimal.Zero, err
		}
		return current.Sub(newer), nil
	}

	if filters.To != nil {
		after, err := s.balanceRepo.SumPostingsAfter(ctx, tenantID, filters.PropertyID, *filters.To)
		if err != nil {
			return decimal.Zero, err
		}
		return current.Sub(after), nil
	}

	return current, nil
}

// GetOutstandingCharges returns unpaid charges oldest-first, the order FIFO
// allocation consumes them in.
func (s *obligationService) GetOutstandingCharges(ctx context.Context, tenantID, propertyID string) ([]dto.ChargeResponse, error) {
	charges, err := s.chargeRepo.FindOutstandingCharges(ctx, tenantID, propertyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read outstanding charges", slog.String("tenant_id", tenantID))
		return nil, err
	}
	return dto.ToChargeResponses(charges), nil
}

// agingRows buckets charges by days overdue at asOf.
func agingRows(charges []domain.TenantCharge, asOf time.Time) ([]domain.AgingReportRow, map[domain.AgingBucket]decimal.Decimal, decimal.Decimal) {
	rows := make([]domain.AgingReportRow, 0, len(charges))
	totals := map[domain.AgingBucket]decimal.Decimal{
		domain.BucketCurrent: decimal.Zero,
		domain.BucketDays30:  decimal.Zero,
		domain.BucketDays60:  decimal.Zero,
		domain.BucketDays90:  decimal.Zero,
		domain.BucketOver90:  decimal.Zero,
	}
	total := decimal.Zero

	for _, charge := range charges {
		days := accounting.DaysBetween(charge.DueDate, asOf)
		bucket := domain.BucketForDaysOverdue(days)
		rows = append(rows, domain.AgingReportRow{
			Charge:      charge,
			DaysOverdue: days,
			Bucket:      bucket,
		})
		totals[bucket] = totals[bucket].Add(charge.BalanceDue)
		total = total.Add(charge.BalanceDue)
	}
	return rows, totals, total
}

// GetAgingReport buckets a tenant's outstanding charges by days overdue.
func (s *obligationService) GetAgingReport(ctx context.Context, tenantID string, asOf time.Time) (*dto.AgingReportResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	charges, err := s.chargeRepo.FindOutstandingCharges(ctx, tenantID, "")
	if err != nil {
		s.LogError(ctx, err, "Failed to read charges for aging report", slog.String("tenant_id", tenantID))
		return nil, err
	}

	rows, totals, total := agingRows(charges, asOf)
	report := domain.AgingReport{
		TenantID: tenantID,
		AsOf:     asOf,
		Rows:     rows,
		Totals:   totals,
		Total:    total,
	}
	resp := dto.ToAgingReportResponse(&report)
	return &resp, nil
}

// GetPortfolioAgingSummary aggregates aging totals for every property with
// outstanding charges.
func (s *obligationService) GetPortfolioAgingSummary(ctx context.Context, asOf time.Time) (*dto.PortfolioAgingResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	charges, err := s.chargeRepo.FindAllOutstandingCharges(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read charges for portfolio aging")
		return nil, err
	}

	byProperty := make(map[string][]domain.TenantCharge)
	order := make([]string, 0)
	for _, charge := range charges {
		if _, ok := byProperty[charge.PropertyID]; !ok {
			order = append(order, charge.PropertyID)
		}
		byProperty[charge.PropertyID] = append(byProperty[charge.PropertyID], charge)
	}
	sort.Strings(order)

	rows := make([]dto.PortfolioAgingRowResponse, 0, len(order))
	for _, propertyID := range order {
		_, totals, total := agingRows(byProperty[propertyID], asOf)
		row := domain.PortfolioAgingRow{
			PropertyID: propertyID,
			Totals:     totals,
			Total:      total,
		}
		rows = append(rows, dto.ToPortfolioAgingRowResponse(&row))
	}

	return &dto.PortfolioAgingResponse{AsOf: asOf, Rows: rows}, nil
}

// GenerateStatement builds a period statement. Opening and closing balances
// are derived from the live balance minus postings after each boundary, so
// closing == opening + charges - payments holds exactly.
func (s *obligationService) GenerateStatement(ctx context.Context, tenantID, propertyID string, start, end time.Time) (*dto.StatementResponse, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: statement period end must be after start", apperrors.ErrValidation)
	}

	current, err := s.currentBalance(ctx, tenantID, propertyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read balance for statement", slog.String("tenant_id", tenantID))
		return nil, err
	}

	afterStart, err := s.balanceRepo.SumPostingsAfter(ctx, tenantID, propertyID, start)
	if err != nil {
		return nil, err
	}
	afterEnd, err := s.balanceRepo.SumPostingsAfter(ctx, tenantID, propertyID, end)
	if err != nil {
		return nil, err
	}

	opening := current.Sub(afterStart)
	closingBaseline := current.Sub(afterEnd)

	lines, err := s.reportingRepo.FindTenantPostingsInWindow(ctx, tenantID, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	running := closingBaseline
	totalCharges := decimal.Zero
	totalPayments := decimal.Zero
	for i := range lines {
		lines[i].RunningBalance = running
		running = running.Sub(lines[i].Posting.Amount)

		if lines[i].Posting.Amount.IsPositive() {
			totalCharges = totalCharges.Add(lines[i].Posting.Amount)
		} else {
			totalPayments = totalPayments.Add(lines[i].Posting.Amount.Neg())
		}
	}

	statement := domain.Statement{
		TenantID:       tenantID,
		PropertyID:     propertyID,
		PeriodStart:    start,
		PeriodEnd:      end,
		OpeningBalance: opening,
		ClosingBalance: opening.Add(totalCharges).Sub(totalPayments),
		TotalCharges:   totalCharges,
		TotalPayments:  totalPayments,
		Lines:          lines,
	}
	resp := dto.ToStatementResponse(&statement)
	return &resp, nil
}

// CreatePaymentPlan schedules a tenant's outstanding balance over equal
// installments; the final installment absorbs any rounding remainder so the
// schedule sums exactly to the plan total.
func (s *obligationService) CreatePaymentPlan(ctx context.Context, tenantID string, req dto.CreatePaymentPlanRequest, actor string) (*dto.PaymentPlanResponse, error) {
	charges, err := s.chargeRepo.FindOutstandingCharges(ctx, tenantID, req.PropertyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read outstanding charges for plan", slog.String("tenant_id", tenantID))
		return nil, err
	}

	outstanding := decimal.Zero
	for _, charge := range charges {
		outstanding = outstanding.Add(charge.BalanceDue)
	}
	if !outstanding.IsPositive() {
		return nil, fmt.Errorf("%w: tenant %s has no outstanding balance to schedule", apperrors.ErrNoBalance, tenantID)
	}

	total := outstanding
	if req.TotalAmount != nil {
		if !req.TotalAmount.IsPositive() {
			return nil, fmt.Errorf("%w: plan total must be positive", apperrors.ErrInvalidAmount)
		}
		if req.TotalAmount.GreaterThan(outstanding) {
			return nil, fmt.Errorf("%w: plan total %s exceeds outstanding balance %s", apperrors.ErrExceedsBalance, req.TotalAmount.String(), outstanding.String())
		}
		total = *req.TotalAmount
	}

	amounts := accounting.SplitInstallments(total, req.NumberOfPayments)

	now := time.Now()
	planID := uuid.NewString()
	frequency := domain.PlanFrequency(req.Frequency)

	installments := make([]domain.Installment, len(amounts))
	dueDate := req.StartDate
	for i, amount := range amounts {
		installments[i] = domain.Installment{
			InstallmentID:     uuid.NewString(),
			PlanID:            planID,
			InstallmentNumber: i + 1,
			DueDate:           dueDate,
			Amount:            amount,
			Status:            domain.InstallmentPending,
		}
		dueDate = frequency.NextDueDate(dueDate)
	}

	plan := domain.PaymentPlan{
		PlanID:           planID,
		TenantID:         tenantID,
		PropertyID:       req.PropertyID,
		TotalAmount:      total,
		NumberOfPayments: req.NumberOfPayments,
		Frequency:        frequency,
		StartDate:        req.StartDate,
		Installments:     installments,
		AuditFields:      domain.NewAuditFields(actor, now),
	}

	if err := s.planRepo.SavePlan(ctx, plan); err != nil {
		s.LogError(ctx, err, "Failed to save payment plan", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save payment plan: %w", err)
	}

	s.publish(ctx, domain.NewDomainEvent(domain.EventPaymentPlanCreated, map[string]any{
		"planId":      planID,
		"tenantId":    tenantID,
		"propertyId":  req.PropertyID,
		"totalAmount": total.String(),
		"payments":    req.NumberOfPayments,
	}))

	s.LogInfo(ctx, "Payment plan created", slog.String("plan_id", planID), slog.String("tenant_id", tenantID), slog.Int("installments", len(installments)))
	resp := dto.ToPaymentPlanResponse(&plan)
	return &resp, nil
}

// incomeAccountFor maps a charge type to the account credited when the
// charge is posted.
func incomeAccountFor(chargeType domain.ChargeType) domain.AccountSubtype {
	switch chargeType {
	case domain.ChargeLateFee:
		return domain.AccountLateFeeIncome
	case domain.ChargeDeposit:
		return domain.AccountSecurityDeposits
	default:
		return domain.AccountRentalIncome
	}
}

// PostCharge creates a tenant obligation and its balanced journal entry:
// debit accounts receivable (tenant dimension), credit the income account.
func (s *obligationService) PostCharge(ctx context.Context, req dto.PostChargeRequest, actor string) (*domain.TenantCharge, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: charge amount must be positive", apperrors.ErrInvalidAmount)
	}
	chargeType := domain.ChargeType(req.ChargeType)
	switch chargeType {
	case domain.ChargeRent, domain.ChargeLateFee, domain.ChargeUtility, domain.ChargeDeposit, domain.ChargeOther:
	default:
		return nil, fmt.Errorf("%w: unknown charge type %q", apperrors.ErrValidation, req.ChargeType)
	}

	accounts, err := s.ledgerSvc.AccountsBySubtype(ctx, domain.AccountAccountsReceivable, incomeAccountFor(chargeType))
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s charge for tenant %s", chargeType, req.TenantID)
	}

	amount := accounting.RoundCurrency(req.Amount)
	tenantID := req.TenantID
	entry, err := s.ledgerSvc.CreateJournalEntry(ctx, dto.CreateEntryInput{
		EntryDate:   req.ChargeDate,
		EntryType:   domain.EntryCharge,
		Description: description,
		Postings: []dto.PostingInput{
			{
				AccountID:  accounts[domain.AccountAccountsReceivable].AccountID,
				Amount:     amount,
				PropertyID: req.PropertyID,
				TenantID:   &tenantID,
			},
			{
				AccountID:  accounts[incomeAccountFor(chargeType)].AccountID,
				Amount:     amount.Neg(),
				PropertyID: req.PropertyID,
			},
		},
		Actor: actor,
	})
	if err != nil {
		return nil, err
	}

	charge := domain.TenantCharge{
		ChargeID:       uuid.NewString(),
		TenantID:       req.TenantID,
		PropertyID:     req.PropertyID,
		LeaseID:        req.LeaseID,
		ChargeType:     chargeType,
		Amount:         amount,
		BalanceDue:     amount,
		ChargeDate:     req.ChargeDate,
		DueDate:        req.DueDate,
		JournalEntryID: entry.EntryID,
		AuditFields:    domain.NewAuditFields(actor, time.Now()),
	}
	if err := s.chargeRepo.SaveCharge(ctx, charge); err != nil {
		s.LogError(ctx, err, "Failed to save charge", slog.String("tenant_id", req.TenantID), slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save charge: %w", err)
	}

	s.publish(ctx, domain.NewDomainEvent(domain.EventChargePosted, map[string]any{
		"chargeId":   charge.ChargeID,
		"tenantId":   charge.TenantID,
		"propertyId": charge.PropertyID,
		"chargeType": string(charge.ChargeType),
		"amount":     charge.Amount.String(),
		"dueDate":    charge.DueDate,
	}))

	s.LogInfo(ctx, "Charge posted", slog.String("charge_id", charge.ChargeID), slog.String("tenant_id", charge.TenantID), slog.String("charge_type", string(charge.ChargeType)))
	return &charge, nil
}
