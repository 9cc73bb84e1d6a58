package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/models"
	"github.com/goplan-app/goplan-server/internal/queue"
)

// Companion types map to default participant caps.
const (
	CompanionIndividual = "Individual"
	CompanionCouple     = "Pareja"
	CompanionSmallGroup = "Grupo pequeño"
	CompanionLargeGroup = "Grupo grande"
)

const defaultMaxParticipants = 2

type PlanService struct {
	planRepo  models.PlanRepo
	userRepo  models.UserRepo
	publisher queue.Publisher
	logger    *slog.Logger
}

func NewPlanService(planRepo models.PlanRepo, userRepo models.UserRepo, publisher queue.Publisher, logger *slog.Logger) *PlanService {
	return &PlanService{
		planRepo:  planRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreatePlanInput is the validated command for plan creation. Date and Time
// arrive separately from the client and are combined server-side.
type CreatePlanInput struct {
	Title           string
	Description     string
	Category        string
	Date            string // 2006-01-02
	Time            string // 15:04
	Location        string
	Latitude        float64
	Longitude       float64
	CompanionType   string
	MaxParticipants string
	Duration        int // minutes
	IsPublic        bool
	Tags            []string
	Images          []string
}

// CompanionCap resolves a companion type to its participant cap, falling
// back to an explicitly supplied value, then to the default of 2.
func CompanionCap(companionType, explicit string) int {
	switch companionType {
	case CompanionIndividual, CompanionCouple:
		return 2
	case CompanionSmallGroup:
		return 6
	case CompanionLargeGroup:
		return 20
	}
	if n, err := strconv.Atoi(explicit); err == nil && n > 0 {
		return n
	}
	return defaultMaxParticipants
}

// CreatePlan validates the input, combines date and time, and persists the
// plan together with its companion chat. The creator becomes the sole,
// auto-accepted participant.
func (ps *PlanService) CreatePlan(ctx context.Context, user *models.User, in CreatePlanInput) (*models.Plan, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
		{"date", in.Date},
		{"time", in.Time},
		{"location", in.Location},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.Error{
			Domain:  apperrors.DomainPlan,
			Kind:    apperrors.KindInvalid,
			Message: "missing required fields",
			Fields:  missing,
		}
	}

	dateTime, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, time.UTC)
	if err != nil {
		return nil, &apperrors.Error{
			Domain:  apperrors.DomainPlan,
			Kind:    apperrors.KindInvalid,
			Message: "invalid date or time",
			Fields:  []string{"date", "time"},
		}
	}
	if dateTime.Before(time.Now().UTC()) {
		return nil, &apperrors.Error{
			Domain:  apperrors.DomainPlan,
			Kind:    apperrors.KindInvalid,
			Message: "plan date must be in the future",
			Fields:  []string{"date", "time"},
		}
	}

	if len(in.Images) == 0 {
		return nil, &apperrors.Error{
			Domain:  apperrors.DomainPlan,
			Kind:    apperrors.KindInvalid,
			Message: "at least one image is required",
			Fields:  []string{"images"},
		}
	}

	media := make([]models.PlanMedia, 0, len(in.Images))
	for _, url := range in.Images {
		media = append(media, models.PlanMedia{Type: "image", URL: url})
	}

	privacy := models.PrivacyPrivate
	if in.IsPublic {
		privacy = models.PrivacyPublic
	}

	duration := in.Duration
	if duration <= 0 {
		duration = 60
	}

	coords := []float64{in.Longitude, in.Latitude}
	plan := &models.Plan{
		Title:           in.Title,
		Description:     in.Description,
		Creator:         user.ID,
		Category:        in.Category,
		Location: models.PlanLocation{
			Type:        "Point",
			Coordinates: coords,
			Address:     in.Location,
			City:        in.Location,
		},
		DateTime:        dateTime,
		Duration:        duration,
		MaxParticipants: CompanionCap(in.CompanionType, in.MaxParticipants),
		Participants: []models.Participant{{
			User:     user.ID,
			Status:   models.ParticipantAccepted,
			Role:     models.RoleCreator,
			JoinedAt: time.Now().UTC(),
		}},
		Tags:    in.Tags,
		Privacy: privacy,
		Status:  models.PlanActive,
		Media:   media,
	}

	created, err := ps.planRepo.CreatePlanWithChat(ctx, plan)
	if err != nil {
		return nil, apperrors.Server("failed to create plan")
	}
	return created, nil
}

// JoinPlan appends the caller as a pending participant and adds them to the
// plan's chat. Duplicate joins and full plans are rejected.
func (ps *PlanService) JoinPlan(ctx context.Context, user *models.User, planID primitive.ObjectID) (*models.Plan, error) {
	plan, err := ps.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.FindParticipant(user.ID) != nil {
		return nil, apperrors.Plan(apperrors.KindInvalid, "you are already a participant of this plan")
	}
	if plan.IsFull() {
		return nil, apperrors.Plan(apperrors.KindInvalid, "this plan is full")
	}

	entry := models.Participant{
		User:     user.ID,
		Status:   models.ParticipantPending,
		Role:     models.RoleParticipant,
		JoinedAt: time.Now().UTC(),
	}
	if err := ps.planRepo.AddParticipant(ctx, planID, entry); err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyParticipant):
			return nil, apperrors.Plan(apperrors.KindInvalid, "you are already a participant of this plan")
		case errors.Is(err, models.ErrPlanFull):
			return nil, apperrors.Plan(apperrors.KindInvalid, "this plan is full")
		default:
			return nil, apperrors.Server("failed to join plan")
		}
	}
	return ps.loadPlan(ctx, planID)
}

// LeavePlan removes the caller's participant entry and their chat
// membership. The creator can never leave.
func (ps *PlanService) LeavePlan(ctx context.Context, user *models.User, planID primitive.ObjectID) (*models.Plan, error) {
	plan, err := ps.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	participant := plan.FindParticipant(user.ID)
	if participant == nil {
		return nil, apperrors.Plan(apperrors.KindInvalid, "you are not a participant of this plan")
	}
	if participant.Role == models.RoleCreator {
		return nil, apperrors.Plan(apperrors.KindPermissionDenied, "the creator cannot leave the plan")
	}

	if err := ps.planRepo.RemoveParticipant(ctx, planID, user.ID); err != nil {
		return nil, apperrors.Server("failed to leave plan")
	}
	return ps.loadPlan(ctx, planID)
}

// UpdateParticipantStatus lets the creator or an admin accept or reject a
// pending participant. Acceptance is mirrored on the target user's joined
// plans; rejection reverses it.
func (ps *PlanService) UpdateParticipantStatus(ctx context.Context, actor *models.User, planID, participantID primitive.ObjectID, status models.ParticipantStatus) (*models.Plan, error) {
	switch status {
	case models.ParticipantAccepted, models.ParticipantRejected, models.ParticipantPending:
	default:
		return nil, apperrors.Plan(apperrors.KindInvalid, "invalid participant status")
	}

	plan, err := ps.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.CanManage(actor.ID) {
		return nil, apperrors.Plan(apperrors.KindPermissionDenied, "you do not have permission to manage participants")
	}
	if plan.FindParticipant(participantID) == nil {
		return nil, apperrors.Plan(apperrors.KindNotFound, "participant not found")
	}

	if err := ps.planRepo.SetParticipantStatus(ctx, planID, participantID, status); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.Plan(apperrors.KindNotFound, "participant not found")
		}
		return nil, apperrors.Server("failed to update participant status")
	}

	ps.publishPlanEvent(ctx, plan, actor.ID, "participant_"+string(status))
	return ps.loadPlan(ctx, planID)
}

// UpdatePlanInput carries the replace-updatable plan fields. Creator and
// participants are not part of this command on purpose.
type UpdatePlanInput struct {
	Title           *string
	Description     *string
	Category        *string
	Location        *string
	DateTime        *time.Time
	Duration        *int
	MaxParticipants *int
	Tags            []string
	Privacy         *models.PlanPrivacy
	Status          *models.PlanStatus
	Images          []string
}

// UpdatePlan replace-updates plan fields. Requires creator or admin role.
func (ps *PlanService) UpdatePlan(ctx context.Context, actor *models.User, planID primitive.ObjectID, in UpdatePlanInput) (*models.Plan, error) {
	plan, err := ps.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.CanManage(actor.ID) {
		return nil, apperrors.Plan(apperrors.KindPermissionDenied, "you do not have permission to edit this plan")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Location != nil {
		fields["location.address"] = *in.Location
		fields["location.city"] = *in.Location
	}
	if in.DateTime != nil {
		fields["date_time"] = *in.DateTime
	}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}
	if in.MaxParticipants != nil {
		if *in.MaxParticipants <= 0 {
			return nil, &apperrors.Error{
				Domain:  apperrors.DomainPlan,
				Kind:    apperrors.KindInvalid,
				Message: "max participants must be positive",
				Fields:  []string{"maxParticipants"},
			}
		}
		fields["max_participants"] = *in.MaxParticipants
	}
	if in.Tags != nil {
		fields["tags"] = in.Tags
	}
	if in.Privacy != nil {
		fields["privacy"] = *in.Privacy
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Images != nil {
		if len(in.Images) == 0 {
			return nil, &apperrors.Error{
				Domain:  apperrors.DomainPlan,
				Kind:    apperrors.KindInvalid,
				Message: "at least one image is required",
				Fields:  []string{"images"},
			}
		}
		media := make([]models.PlanMedia, 0, len(in.Images))
		for _, url := range in.Images {
			media = append(media, models.PlanMedia{Type: "image", URL: url})
		}
		fields["media"] = media
	}
	if len(fields) == 0 {
		return nil, apperrors.Plan(apperrors.KindInvalid, "no fields to update")
	}

	updated, err := ps.planRepo.UpdatePlan(ctx, planID, fields)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.Plan(apperrors.KindNotFound, "plan not found")
		}
		return nil, apperrors.Server("failed to update plan")
	}

	ps.publishPlanEvent(ctx, updated, actor.ID, "updated")
	return updated, nil
}

// GetPlan loads a single plan, applying the privacy rule: non-public plans
// are only visible to participants, the creator, and (for friends-only
// plans) the creator's friends.
func (ps *PlanService) GetPlan(ctx context.Context, caller *models.User, planID primitive.ObjectID) (*models.Plan, error) {
	plan, err := ps.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Privacy == models.PrivacyPublic {
		return plan, nil
	}

	denied := apperrors.Plan(apperrors.KindPermissionDenied, "you do not have access to this plan")
	if caller == nil {
		return nil, denied
	}
	if plan.Creator == caller.ID || plan.FindParticipant(caller.ID) != nil {
		return plan, nil
	}
	if plan.Privacy == models.PrivacyFriends {
		creator, err := ps.userRepo.GetUserByID(ctx, plan.Creator)
		if err == nil && creator.HasFriend(caller.ID) {
			return plan, nil
		}
	}
	return nil, denied
}

// PlanListOptions are the query-level filters for plan listings.
type PlanListOptions struct {
	Status   string
	Category string
	Search   string
	Filter   string // "my-plans" | "participating"
}

// GetPlans lists plans visible to the caller (who may be anonymous).
func (ps *PlanService) GetPlans(ctx context.Context, caller *models.User, opts PlanListOptions) ([]*models.Plan, error) {
	filter := models.PlanFilter{
		Status:   models.PlanStatus(opts.Status),
		Category: opts.Category,
		Search:   opts.Search,
	}

	var callerID *primitive.ObjectID
	if caller != nil {
		callerID = &caller.ID
		switch opts.Filter {
		case "my-plans":
			filter.CreatedBy = caller.ID
		case "participating":
			filter.Participating = caller.ID
		}
	}

	plans, err := ps.planRepo.ListPlans(ctx, callerID, filter)
	if err != nil {
		return nil, apperrors.Server("failed to list plans")
	}
	return plans, nil
}

// GetUserPlans lists a user's created or joined plans. Visibility is always
// judged against the caller, so browsing another user's plans only surfaces
// what the caller could see anyway.
func (ps *PlanService) GetUserPlans(ctx context.Context, caller *models.User, userID primitive.ObjectID, listType, status string) ([]*models.Plan, error) {
	filter := models.PlanFilter{Status: models.PlanStatus(status)}
	switch listType {
	case "joined":
		filter.Participating = userID
	default:
		filter.CreatedBy = userID
	}

	var callerID *primitive.ObjectID
	if caller != nil {
		callerID = &caller.ID
	}
	plans, err := ps.planRepo.ListPlans(ctx, callerID, filter)
	if err != nil {
		return nil, apperrors.Server("failed to list plans")
	}
	return plans, nil
}

func (ps *PlanService) loadPlan(ctx context.Context, planID primitive.ObjectID) (*models.Plan, error) {
	plan, err := ps.planRepo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, apperrors.Plan(apperrors.KindNotFound, "plan not found")
		}
		return nil, apperrors.Server("failed to load plan")
	}
	return plan, nil
}

func (ps *PlanService) publishPlanEvent(ctx context.Context, plan *models.Plan, actorID primitive.ObjectID, action string) {
	event := queue.PlanUpdatedEvent{
		PlanID:    plan.ID.Hex(),
		Title:     plan.Title,
		Action:    action,
		ActorID:   actorID.Hex(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := ps.publisher.Publish(ctx, queue.PlanUpdatedQueue, event); err != nil {
		ps.logger.Warn("failed to publish plan event", "plan_id", event.PlanID, "action", action, "error", err)
	}
}
