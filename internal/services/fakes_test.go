package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/models"
)

// fakeStore is an in-memory stand-in for the mongo-backed repository. It
// implements models.UserRepo, models.PlanRepo, and models.ChatRepo so one
// instance can back every service under test, just like the real repo.
type fakeStore struct {
	users map[primitive.ObjectID]*models.User
	plans map[primitive.ObjectID]*models.Plan
	chats map[primitive.ObjectID]*models.Chat
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[primitive.ObjectID]*models.User{},
		plans: map[primitive.ObjectID]*models.Plan{},
		chats: map[primitive.ObjectID]*models.Chat{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, models.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "user"
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) GetUserByProvider(_ context.Context, provider, providerID string) (*models.User, error) {
	for _, u := range f.users {
		switch provider {
		case "google":
			if u.GoogleID == providerID {
				return u, nil
			}
		case "facebook":
			if u.FacebookID == providerID {
				return u, nil
			}
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "interests":
			u.Interests = v.([]string)
		case "availability":
			u.Availability = v.(*models.UserAvailability)
		case "google_id":
			u.GoogleID = v.(string)
		case "facebook_id":
			u.FacebookID = v.(string)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return u, nil
}

func (f *fakeStore) UpdateSettings(_ context.Context, id primitive.ObjectID, settings models.UserSettings) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Settings = settings
	return u, nil
}

func (f *fakeStore) AddFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	u, ok := f.users[userID]
	fr, ok2 := f.users[friendID]
	if !ok || !ok2 {
		return models.ErrNotFound
	}
	u.Friends = appendUnique(u.Friends, friendID)
	fr.Friends = appendUnique(fr.Friends, userID)
	return nil
}

func (f *fakeStore) RemoveFriend(_ context.Context, userID, friendID primitive.ObjectID) error {
	if u, ok := f.users[userID]; ok {
		u.Friends = removeID(u.Friends, friendID)
	}
	if fr, ok := f.users[friendID]; ok {
		fr.Friends = removeID(fr.Friends, userID)
	}
	return nil
}

func (f *fakeStore) SetAvatar(_ context.Context, id primitive.ObjectID, url string) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Avatar = url
	return nil
}

func (f *fakeStore) AddPhotos(_ context.Context, id primitive.ObjectID, urls []string) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Photos = append(u.Photos, urls...)
	return nil
}

func (f *fakeStore) RemovePhoto(_ context.Context, id primitive.ObjectID, url string) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	kept := u.Photos[:0]
	for _, p := range u.Photos {
		if p != url {
			kept = append(kept, p)
		}
	}
	u.Photos = kept
	return nil
}

func (f *fakeStore) CreatePlanWithChat(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	now := time.Now().UTC()
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	plan.Chat = primitive.NewObjectID()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	f.plans[plan.ID] = plan

	f.chats[plan.Chat] = &models.Chat{
		ID:           plan.Chat,
		Plan:         plan.ID,
		Participants: []primitive.ObjectID{plan.Creator},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if creator, ok := f.users[plan.Creator]; ok {
		creator.PlansCreated = append(creator.PlansCreated, plan.ID)
	}
	return plan, nil
}

func (f *fakeStore) GetPlanByID(_ context.Context, id primitive.ObjectID) (*models.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListPlans(_ context.Context, caller *primitive.ObjectID, filter models.PlanFilter) ([]*models.Plan, error) {
	var out []*models.Plan
	for _, p := range f.plans {
		if !f.visible(p, caller) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		if !filter.CreatedBy.IsZero() && p.Creator != filter.CreatedBy {
			continue
		}
		if !filter.Participating.IsZero() {
			pt := p.FindParticipant(filter.Participating)
			if pt == nil || pt.Status != models.ParticipantAccepted {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) visible(p *models.Plan, caller *primitive.ObjectID) bool {
	if p.Privacy == models.PrivacyPublic {
		return true
	}
	if caller == nil {
		return false
	}
	return p.Creator == *caller || p.FindParticipant(*caller) != nil
}

func (f *fakeStore) AddParticipant(_ context.Context, planID primitive.ObjectID, entry models.Participant) error {
	p, ok := f.plans[planID]
	if !ok {
		return models.ErrNotFound
	}
	if p.FindParticipant(entry.User) != nil {
		return models.ErrAlreadyParticipant
	}
	if p.IsFull() {
		return models.ErrPlanFull
	}
	p.Participants = append(p.Participants, entry)
	if chat, ok := f.chats[p.Chat]; ok {
		chat.Participants = appendUnique(chat.Participants, entry.User)
	}
	return nil
}

func (f *fakeStore) RemoveParticipant(_ context.Context, planID, userID primitive.ObjectID) error {
	p, ok := f.plans[planID]
	if !ok {
		return models.ErrNotFound
	}
	kept := p.Participants[:0]
	for _, pt := range p.Participants {
		if pt.User != userID {
			kept = append(kept, pt)
		}
	}
	p.Participants = kept
	if chat, ok := f.chats[p.Chat]; ok {
		chat.Participants = removeID(chat.Participants, userID)
	}
	if u, ok := f.users[userID]; ok {
		u.PlansJoined = removeID(u.PlansJoined, planID)
	}
	return nil
}

func (f *fakeStore) SetParticipantStatus(_ context.Context, planID, participantID primitive.ObjectID, status models.ParticipantStatus) error {
	p, ok := f.plans[planID]
	if !ok {
		return models.ErrNotFound
	}
	pt := p.FindParticipant(participantID)
	if pt == nil {
		return models.ErrNotFound
	}
	pt.Status = status

	if u, ok := f.users[participantID]; ok {
		switch status {
		case models.ParticipantAccepted:
			u.PlansJoined = appendUnique(u.PlansJoined, planID)
		case models.ParticipantRejected:
			u.PlansJoined = removeID(u.PlansJoined, planID)
		}
	}
	return nil
}

func (f *fakeStore) UpdatePlan(_ context.Context, planID primitive.ObjectID, fields map[string]interface{}) (*models.Plan, error) {
	p, ok := f.plans[planID]
	if !ok {
		return nil, models.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "category":
			p.Category = v.(string)
		case "location.address":
			p.Location.Address = v.(string)
		case "location.city":
			p.Location.City = v.(string)
		case "date_time":
			p.DateTime = v.(time.Time)
		case "duration":
			p.Duration = v.(int)
		case "max_participants":
			p.MaxParticipants = v.(int)
		case "media":
			p.Media = v.([]models.PlanMedia)
		case "tags":
			p.Tags = v.([]string)
		case "privacy":
			p.Privacy = v.(models.PlanPrivacy)
		case "status":
			p.Status = v.(models.PlanStatus)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

func (f *fakeStore) GetChatByPlanID(_ context.Context, planID primitive.ObjectID) (*models.Chat, error) {
	for _, c := range f.chats {
		if c.Plan == planID {
			return c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) AppendMessage(_ context.Context, chatID primitive.ObjectID, msg models.Message) error {
	c, ok := f.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	last := c.Messages[len(c.Messages)-1]
	c.LastMessage = &last
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) MarkMessagesRead(_ context.Context, chatID, userID primitive.ObjectID) error {
	c, ok := f.chats[chatID]
	if !ok {
		return models.ErrNotFound
	}
	for i := range c.Messages {
		if !c.Messages[i].ReadByUser(userID) {
			c.Messages[i].ReadBy = append(c.Messages[i].ReadBy, userID)
		}
	}
	return nil
}

func appendUnique(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
