package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/event"
	"bloodbank-service/internal/domain/inventory"
	domainRequest "bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/pkg/id"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("bloodbank-service/usecase/request")

type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	emitter event.Emitter
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithEmitter(e event.Emitter) Option { return func(u *Usecase) { u.emitter = e } }
func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{repos: repos, uow: tx, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	return u
}

func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*RequestDTO, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity must be positive")
	}
	p, err := u.repos.Patients.GetByPatientID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	group := in.BloodGroup
	if group == "" {
		group = p.BloodGroup
	}
	if !group.Valid() {
		return nil, domain.Invalid("unknown blood group " + string(group))
	}

	br := &domainRequest.BloodRequest{
		RequestID:  id.NewID32(),
		PatientID:  p.ID,
		BloodGroup: group,
		Quantity:   in.Quantity,
		Status:     domainRequest.StatusPending,
	}
	if err := u.repos.Requests.Create(ctx, br); err != nil {
		return nil, err
	}
	u.emit(ctx, event.RequestSubmitted, payload(br, p))
	return toDTO(br, p, ""), nil
}

// Approve fulfills a pending request from stock. When stock is short it
// fails with InsufficientInventoryError and the request stays pending.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*RequestDTO, error) {
	ctx, span := tracer.Start(ctx, "request.Fulfill")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", in.RequestID))

	today := blood.Day(u.now())
	var (
		dto *RequestDTO
		ev  event.RequestPayload
	)
	err := domain.RetryOnConflict(func() error {
		return u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, br *domainRequest.BloodRequest) error {
			var err error
			dto, ev, err = u.fulfill(ctx, r, br, today)
			return err
		})
	})
	if errors.Is(err, domain.ErrConflict) {
		err = u.shortage(ctx, in.RequestID, today)
	}
	if err != nil {
		u.logRefusal("approve", in.RequestID, err)
		if !isExpected(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("blood_group", string(dto.BloodGroup)), attribute.Int("allocated", dto.FulfilledQuantity))
	u.log.Info("request fulfilled",
		zap.String("request_id", in.RequestID),
		zap.String("approver_id", in.ApproverID),
		zap.Int("quantity", dto.FulfilledQuantity))
	u.emit(ctx, event.RequestFulfilled, ev)
	return dto, nil
}

func (u *Usecase) fulfill(ctx context.Context, r uow.Repos, br *domainRequest.BloodRequest, today time.Time) (*RequestDTO, event.RequestPayload, error) {
	if br.Status.Processed() {
		return nil, event.RequestPayload{}, fmt.Errorf("%w: request is %s", domain.ErrAlreadyProcessed, br.Status)
	}
	if br.Status != domainRequest.StatusPending {
		return nil, event.RequestPayload{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, br.Status, domainRequest.StatusFulfilled)
	}

	ledger := inventory.NewLedger(r.Units)
	ok, total, err := ledger.CheckAvailability(ctx, br.BloodGroup, br.Quantity, today)
	if err != nil {
		return nil, event.RequestPayload{}, err
	}
	if !ok {
		return nil, event.RequestPayload{}, &domain.InsufficientInventoryError{Requested: br.Quantity, Available: total}
	}

	a, err := ledger.Allocate(ctx, br.BloodGroup, br.Quantity, today)
	if err != nil {
		return nil, event.RequestPayload{}, err
	}
	if a.Allocated < br.Quantity {
		// stock shrank between the sum and the locked read
		return nil, event.RequestPayload{}, &domain.InsufficientInventoryError{Requested: br.Quantity, Available: a.Allocated}
	}

	at := u.now().UTC()
	br.FulfilledQuantity = a.Allocated
	br.Status = domainRequest.StatusFulfilled
	br.FulfilledAt = &at
	var donorPublicID string
	if d := originDonor(ctx, r, a); d != nil {
		br.FulfilledByDonorID = &d.ID
		donorPublicID = d.DonorID
	}
	if err := r.Requests.Save(ctx, br); err != nil {
		return nil, event.RequestPayload{}, err
	}

	p, err := r.Patients.GetByID(ctx, br.PatientID)
	if err != nil {
		return nil, event.RequestPayload{}, err
	}
	dto := toDTO(br, p, donorPublicID)
	for _, use := range a.Uses {
		dto.Units = append(dto.Units, UnitUseDTO{UnitID: use.UnitID, Quantity: use.Quantity, SplitInto: use.SplitInto})
	}
	return dto, payload(br, p), nil
}

// originDonor resolves the donor when every consumed unit came from one donation.
func originDonor(ctx context.Context, r uow.Repos, a *inventory.Allocation) *donor.Donor {
	donationID := a.SingleOrigin()
	if donationID == nil {
		return nil
	}
	dn, err := r.Donations.GetByID(ctx, *donationID)
	if err != nil {
		return nil
	}
	d, err := r.Donors.GetByID(ctx, dn.DonorID)
	if err != nil {
		return nil
	}
	return d
}

// shortage reports a twice-lost allocation race as the current stock level.
func (u *Usecase) shortage(ctx context.Context, requestID string, today time.Time) error {
	br, err := u.repos.Requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	_, total, err := inventory.NewLedger(u.repos.Units).CheckAvailability(ctx, br.BloodGroup, br.Quantity, today)
	if err != nil {
		return err
	}
	return &domain.InsufficientInventoryError{Requested: br.Quantity, Available: total}
}

// Reject marks the request rejected whatever its status. Rejecting an
// already rejected request leaves the row as it is but still emits.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*RequestDTO, error) {
	var (
		dto *RequestDTO
		ev  event.RequestPayload
	)
	err := u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, br *domainRequest.BloodRequest) error {
		p, err := r.Patients.GetByID(ctx, br.PatientID)
		if err != nil {
			return err
		}
		if br.Status == domainRequest.StatusRejected {
			ev = payload(br, p)
			ev.Reason = br.RejectionReason
			dto = toDTO(br, p, "")
			return nil
		}
		if br.Status == domainRequest.StatusFulfilled {
			u.log.Warn("rejecting a fulfilled request; allocated units stay used",
				zap.String("request_id", br.RequestID), zap.Int("fulfilled_quantity", br.FulfilledQuantity))
		}
		at := u.now().UTC()
		br.Status = domainRequest.StatusRejected
		br.RejectedAt = &at
		br.RejectionReason = in.Reason
		if err := r.Requests.Save(ctx, br); err != nil {
			return err
		}
		ev = payload(br, p)
		ev.Reason = in.Reason
		dto = toDTO(br, p, "")
		return nil
	})
	if err != nil {
		u.logRefusal("reject", in.RequestID, err)
		return nil, err
	}
	u.emit(ctx, event.RequestRejected, ev)
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*RequestDTO, error) {
	br, err := u.repos.Requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	p, err := u.repos.Patients.GetByID(ctx, br.PatientID)
	if err != nil {
		return nil, err
	}
	return toDTO(br, p, u.donorPublicID(ctx, br.FulfilledByDonorID)), nil
}

// ListByPatient returns a patient's requests, newest first.
func (u *Usecase) ListByPatient(ctx context.Context, patientID string) ([]RequestDTO, error) {
	p, err := u.repos.Patients.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	list, err := u.repos.Requests.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := make([]RequestDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i], p, u.donorPublicID(ctx, list[i].FulfilledByDonorID)))
	}
	return out, nil
}

func (u *Usecase) donorPublicID(ctx context.Context, donorID *uint64) string {
	if donorID == nil {
		return ""
	}
	d, err := u.repos.Donors.GetByID(ctx, *donorID)
	if err != nil {
		return ""
	}
	return d.DonorID
}

func isExpected(err error) bool {
	var short *domain.InsufficientInventoryError
	return errors.As(err, &short) ||
		errors.Is(err, domain.ErrAlreadyProcessed) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput)
}

func (u *Usecase) logRefusal(op, requestID string, err error) {
	if isExpected(err) {
		u.log.Info("request "+op+" refused", zap.String("request_id", requestID), zap.Error(err))
		return
	}
	u.log.Error("request "+op+" failed", zap.String("request_id", requestID), zap.Error(err))
}

func (u *Usecase) emit(ctx context.Context, t event.Type, p event.RequestPayload) {
	if u.emitter == nil {
		return
	}
	if err := u.emitter.Emit(ctx, event.New(t, u.now(), p)); err != nil {
		u.log.Error("emit event", zap.String("type", string(t)), zap.String("request_id", p.RequestID), zap.Error(err))
	}
}

func payload(br *domainRequest.BloodRequest, p *donor.Patient) event.RequestPayload {
	return event.RequestPayload{
		RequestID:         br.RequestID,
		PatientID:         p.PatientID,
		PatientName:       p.FullName,
		BloodGroup:        br.BloodGroup,
		Quantity:          br.Quantity,
		FulfilledQuantity: br.FulfilledQuantity,
		Status:            string(br.Status),
	}
}

func toDTO(br *domainRequest.BloodRequest, p *donor.Patient, donorID string) *RequestDTO {
	return &RequestDTO{
		RequestID:         br.RequestID,
		PatientID:         p.PatientID,
		PatientName:       p.FullName,
		BloodGroup:        br.BloodGroup,
		Quantity:          br.Quantity,
		FulfilledQuantity: br.FulfilledQuantity,
		Status:            br.Status,
		FulfilledByDonor:  donorID,
		FulfilledAt:       br.FulfilledAt,
		RejectedAt:        br.RejectedAt,
		RejectionReason:   br.RejectionReason,
		CreatedAt:         br.CreatedAt,
	}
}
