package area

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/external"
	"waypost/internal/domain/geo"
)

// notificationMsgMaxLen caps the derived push-notification teaser.
const notificationMsgMaxLen = 100

// defaultCategory is applied when the caller leaves category blank.
const defaultCategory = "uncategorized"

// ModerationGate screens content at creation and update time.
type ModerationGate interface {
	// IsTextUnsafe runs the synchronous profanity screen over text fields.
	IsTextUnsafe(fields []string) bool

	// ScreenMediaAsync dispatches the best-effort media screen off the
	// request path.
	ScreenMediaAsync(t area.Type, areaID string, mediaPaths []string)
}

// DetailsCache is the edge cache for assembled detail responses.
type DetailsCache interface {
	Get(ctx context.Context, t area.Type, id string) *area.Details
	Set(ctx context.Context, t area.Type, id string, d *area.Details)
	Invalidate(ctx context.Context, t area.Type, id string)
}

// RewardClaimer runs the incentive claim flow against a hosting space.
type RewardClaimer interface {
	Claim(ctx context.Context, rc external.RequestContext, space *area.Area, actingUserID, triggerKey string) (int, error)
}

// IncentiveCreator persists incentive rules for a newly created space.
type IncentiveCreator interface {
	CreateForSpace(ctx context.Context, spaceID, region string, incentives []area.Incentive) ([]area.Incentive, error)
}

// Deps bundles the collaborators the area service is wired with.
type Deps struct {
	Store      area.Store
	Media      area.MediaStore
	CheckIns   area.CheckInStore
	Incentives IncentiveCreator
	Cache      DetailsCache
	Gate       ModerationGate
	Geocoder   geo.Geocoder
	Users      external.UsersClient
	Reactions  external.ReactionsClient
	MediaURLs  external.MediaClient
	Rewards    RewardClaimer
	Publisher  area.Publisher
	Log        *zap.Logger
}

// Service implements the area operations behind the HTTP handlers: create,
// update, search, enriched detail reads, batch find, delete, and the space
// claim/check-in flows.
type Service struct {
	store      area.Store
	media      area.MediaStore
	checkIns   area.CheckInStore
	incentives IncentiveCreator
	cache      DetailsCache
	gate       ModerationGate
	geocoder   geo.Geocoder
	users      external.UsersClient
	reactions  external.ReactionsClient
	mediaURLs  external.MediaClient
	rewards    RewardClaimer
	publisher  area.Publisher
	log        *zap.Logger
}

// NewService creates a new area service
func NewService(d Deps) *Service {
	return &Service{
		store:      d.Store,
		media:      d.Media,
		checkIns:   d.CheckIns,
		incentives: d.Incentives,
		cache:      d.Cache,
		gate:       d.Gate,
		geocoder:   d.Geocoder,
		users:      d.Users,
		reactions:  d.Reactions,
		mediaURLs:  d.MediaURLs,
		rewards:    d.Rewards,
		publisher:  d.Publisher,
		log:        d.Log,
	}
}

// Create validates, derives, moderates and persists a new area, then runs
// the post-insert follow-ups (companion reaction, async media screen,
// lifecycle event, reward claim). Returns the persisted area and any coins
// rewarded for creating it at a hosting space. When the space owner cannot
// fund the reward the area is still returned together with
// ErrInsufficientFunds.
func (s *Service) Create(ctx context.Context, rc external.RequestContext, p area.CreateParams) (*area.Area, int, error) {
	if !p.Type.Valid() {
		return nil, 0, area.ValidationError("unknown area type")
	}
	if p.FromUserID == "" {
		return nil, 0, area.ValidationError("missing user id")
	}
	if strings.TrimSpace(p.Message) == "" {
		return nil, 0, area.ValidationError("message is required")
	}
	if err := p.Geometry.Validate(); err != nil {
		return nil, 0, err
	}
	if p.Type == area.TypeEvent {
		if p.ScheduleStartAt == nil || p.ScheduleStopAt == nil {
			return nil, 0, area.ValidationError("events require a schedule start and stop time")
		}
		if !p.ScheduleStartAt.Before(*p.ScheduleStopAt) {
			return nil, 0, area.ValidationError("event schedule start must precede stop")
		}
	}
	if len(p.Media) > 0 && p.MediaIDs != "" {
		return nil, 0, area.ValidationError("provide inline media or mediaIds, not both")
	}

	notificationMsg := sanitizeNotificationMsg(p.NotificationMsg, p.Message)

	dup, err := s.store.IsDuplicate(ctx, p.Type, p.FromUserID, p.Message, notificationMsg)
	if err != nil {
		return nil, 0, err
	}
	if dup {
		return nil, 0, area.ErrDuplicatePost
	}

	region := s.regionFor(ctx, p.Geometry.Centroid())

	mediaIDs, mediaPaths, err := s.normalizeMedia(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	category := p.Category
	if category == "" {
		category = defaultCategory
	}

	isPublic := p.IsPublic
	isMature := false
	if s.gate.IsTextUnsafe([]string{p.Message, notificationMsg, p.HashTags}) {
		isMature = true
		isPublic = false
	}

	if p.Type == area.TypeSpace {
		overlaps, err := s.store.SpaceOverlaps(ctx, p.Geometry)
		if err != nil {
			return nil, 0, err
		}
		if overlaps {
			return nil, 0, area.ErrOverlapConflict
		}
	}

	a := &area.Area{
		Type:            p.Type,
		FromUserID:      p.FromUserID,
		Message:         p.Message,
		NotificationMsg: notificationMsg,
		HashTags:        p.HashTags,
		Category:        category,
		MediaIDs:        mediaIDs,
		IsPublic:        isPublic,
		IsDraft:         p.IsDraft,
		IsMatureContent: isMature,
		Region:          region,
		Geometry:        p.Geometry,
		MaxViews:        p.MaxViews,
		ScheduleStartAt: p.ScheduleStartAt,
		ScheduleStopAt:  p.ScheduleStopAt,
		SpaceID:         p.SpaceID,
		GroupID:         p.GroupID,
	}

	created, err := s.store.Insert(ctx, a)
	if err != nil {
		return nil, 0, err
	}

	if p.Type == area.TypeSpace && len(p.Incentives) > 0 {
		incentives, err := s.incentives.CreateForSpace(ctx, created.ID, region, p.Incentives)
		if err != nil {
			// The space exists; losing its incentive rules is recoverable by
			// an owner edit, so don't unwind the insert.
			s.log.Error("failed to create space incentives",
				zap.String("spaceId", created.ID),
				zap.Error(err))
		} else {
			created.Incentives = incentives
		}
	}

	if err := s.reactions.CreateReaction(ctx, rc, string(created.Type), created.ID); err != nil {
		s.log.Warn("companion reaction creation failed",
			zap.String("areaId", created.ID),
			zap.Error(err))
	}

	s.gate.ScreenMediaAsync(created.Type, created.ID, mediaPaths)

	coins := 0
	var rewardErr error
	if !p.SkipReward && p.SpaceID != "" && p.Type != area.TypeSpace {
		coins, rewardErr = s.claimCreationReward(ctx, rc, created, p.SpaceID)
	}

	s.publisher.Publish(area.EventCreated, created)

	return created, coins, rewardErr
}

// claimCreationReward runs the hosting-space incentive claim for a new
// moment or event. The content is already persisted and must not be
// affected: every failure degrades to zero coins except an underfunded
// space owner, which is returned so the caller can choose to re-submit
// with SkipReward.
func (s *Service) claimCreationReward(ctx context.Context, rc external.RequestContext, created *area.Area, spaceID string) (int, error) {
	triggerKey := area.IncentiveKeyShareMoment
	if created.Type == area.TypeEvent {
		triggerKey = area.IncentiveKeyHostEvent
	}

	space, err := s.store.GetByID(ctx, area.TypeSpace, spaceID)
	if err != nil {
		s.log.Warn("hosting space lookup failed, skipping reward",
			zap.String("spaceId", spaceID),
			zap.Error(err))
		return 0, nil
	}

	coins, err := s.rewards.Claim(ctx, rc, space, created.FromUserID, triggerKey)
	if err != nil {
		if errors.Is(err, area.ErrInsufficientFunds) {
			s.log.Info("space owner cannot fund creation reward",
				zap.String("spaceId", spaceID),
				zap.String("areaId", created.ID))
			return 0, err
		}
		s.log.Warn("creation reward claim failed",
			zap.String("spaceId", spaceID),
			zap.Error(err))
		return 0, nil
	}
	return coins, nil
}

// Update applies an owner-scoped partial update. Changed text is re-screened
// and an unsafe verdict demotes the row; the screen never un-demotes.
func (s *Service) Update(ctx context.Context, rc external.RequestContext, t area.Type, id string, p area.UpdateParams) (*area.Area, error) {
	if !t.Valid() {
		return nil, area.ValidationError("unknown area type")
	}
	if rc.UserID == "" {
		return nil, area.ValidationError("missing user id")
	}

	if p.NotificationMsg != nil {
		sanitized := sanitizeNotificationMsg(*p.NotificationMsg, "")
		p.NotificationMsg = &sanitized
	}

	var changedText []string
	for _, f := range []*string{p.Message, p.NotificationMsg, p.HashTags} {
		if f != nil {
			changedText = append(changedText, *f)
		}
	}
	if len(changedText) > 0 && s.gate.IsTextUnsafe(changedText) {
		mature, public := true, false
		p.IsMatureContent = &mature
		p.IsPublic = &public
	}

	// A mature row cannot be flipped back to public through an edit.
	if p.IsPublic != nil && *p.IsPublic {
		current, err := s.store.GetByID(ctx, t, id)
		if err != nil {
			return nil, err
		}
		if current.IsMatureContent {
			return nil, area.ValidationError("mature content cannot be made public")
		}
	}

	updated, err := s.store.Update(ctx, t, id, rc.UserID, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, t, id)
	s.publisher.Publish(area.EventUpdated, updated)

	return updated, nil
}

// SearchRequest is a proximity search as the handlers receive it. Scope is
// "me", "connections", or empty for the public scope.
type SearchRequest struct {
	Scope           string
	Center          geo.Point
	ProximityMeters float64
	FilterBy        string
	Query           string
	Partial         bool
	Pagination      area.Pagination
}

// Search runs the scoped proximity search. The public scope returns public
// rows plus the caller's own; "me" restricts to the caller; "connections"
// restricts to the caller's connections resolved via the users service.
func (s *Service) Search(ctx context.Context, rc external.RequestContext, t area.Type, req SearchRequest) ([]area.Area, area.Pagination, error) {
	page := req.Pagination.Normalize()
	if !t.Valid() {
		return nil, page, area.ValidationError("unknown area type")
	}

	filters := area.SearchFilters{
		Center:          req.Center,
		ProximityMeters: geo.ClampProximity(req.ProximityMeters),
		FilterBy:        req.FilterBy,
		Query:           req.Query,
		Partial:         req.Partial,
	}

	switch req.Scope {
	case "me":
		filters.FromUserIDs = []string{rc.UserID}
	case "connections":
		ids, err := s.users.GetConnectionIDs(ctx, rc)
		if err != nil {
			return nil, page, err
		}
		if len(ids) == 0 {
			return []area.Area{}, page, nil
		}
		filters.FromUserIDs = ids
	default:
		filters.FromUserIDs = []string{rc.UserID}
		filters.IncludePublic = true
	}

	results, err := s.store.Search(ctx, t, filters, page)
	if err != nil {
		return nil, page, err
	}
	return results, page, nil
}

// SearchMine lists the caller's own rows, optionally restricted to drafts
// or to published-public rows.
func (s *Service) SearchMine(ctx context.Context, rc external.RequestContext, t area.Type, f area.MineFilters, p area.Pagination) ([]area.Area, area.Pagination, error) {
	page := p.Normalize()
	if !t.Valid() {
		return nil, page, area.ValidationError("unknown area type")
	}
	if rc.UserID == "" {
		return nil, page, area.ValidationError("missing user id")
	}

	f.FromUserID = rc.UserID
	results, err := s.store.SearchMine(ctx, t, f, page)
	if err != nil {
		return nil, page, err
	}
	return results, page, nil
}

// GetDetails returns one area with optional media/user enrichment, serving
// from the edge cache when the fully enriched form was requested. The
// access check always runs, cache hit or not: a non-public area is visible
// only to its owner and to users who have activated it.
func (s *Service) GetDetails(ctx context.Context, rc external.RequestContext, t area.Type, id string, opts area.EnrichOptions) (*area.Details, error) {
	if !t.Valid() {
		return nil, area.ValidationError("unknown area type")
	}

	if opts.CacheEligible() {
		if cached := s.cache.Get(ctx, t, id); cached != nil {
			if err := s.checkAccess(ctx, rc, &cached.Area); err != nil {
				return nil, err
			}
			return cached, nil
		}
	}

	a, err := s.store.GetByID(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, rc, a); err != nil {
		return nil, err
	}

	details := &area.Details{Area: *a}
	enriched := true

	if opts.WithMedia && a.MediaIDs != "" {
		urls, err := s.mediaURLs.ResolveSignedURLs(ctx, splitIDs(a.MediaIDs))
		if err != nil {
			enriched = false
			s.log.Warn("signed URL resolution failed",
				zap.String("areaId", id),
				zap.Error(err))
		} else {
			details.Media = urls
		}
	}

	if opts.WithUser {
		users, err := s.users.FindUsers(ctx, []string{a.FromUserID})
		if err != nil {
			enriched = false
			s.log.Warn("owner identity lookup failed",
				zap.String("areaId", id),
				zap.Error(err))
		} else {
			details.Users = make(map[string]external.UserSummary, len(users))
			for _, u := range users {
				details.Users[u.ID] = u
			}
		}
	}

	if a.SpaceID != "" {
		space, err := s.store.GetByID(ctx, area.TypeSpace, a.SpaceID)
		if err != nil {
			if !errors.Is(err, area.ErrNotFound) {
				s.log.Warn("hosting space lookup failed",
					zap.String("spaceId", a.SpaceID),
					zap.Error(err))
			}
		} else {
			details.Space = space
		}
	}

	// Join failures above leave the response below the fully enriched
	// form, so only a complete assembly is cached.
	if opts.CacheEligible() && enriched {
		s.cache.Set(ctx, t, id, details)
	}

	return details, nil
}

func (s *Service) checkAccess(ctx context.Context, rc external.RequestContext, a *area.Area) error {
	if a.IsPublic || a.FromUserID == rc.UserID {
		return nil
	}

	activated, err := s.reactions.HasActivated(ctx, rc, string(a.Type), a.ID)
	if err != nil {
		return err
	}
	if !activated {
		return area.ErrAccessDenied
	}
	return nil
}

// FindResult is a batch fetch plus its optional shared enrichment maps.
type FindResult struct {
	Areas []area.Area                     `json:"areas"`
	Media map[string]string               `json:"media,omitempty"`
	Users map[string]external.UserSummary `json:"users,omitempty"`
}

// FindByIDs batch-fetches areas and enriches them as requested. Enrichment
// failures degrade to the bare rows.
func (s *Service) FindByIDs(ctx context.Context, t area.Type, ids []string, f area.FindFilters, opts area.EnrichOptions) (*FindResult, error) {
	if !t.Valid() {
		return nil, area.ValidationError("unknown area type")
	}
	if len(ids) == 0 {
		return &FindResult{Areas: []area.Area{}}, nil
	}

	areas, err := s.store.FindByIDs(ctx, t, ids, f)
	if err != nil {
		return nil, err
	}

	result := &FindResult{Areas: areas}

	if opts.WithMedia {
		var mediaIDs []string
		for i := range areas {
			if areas[i].MediaIDs != "" {
				mediaIDs = append(mediaIDs, splitIDs(areas[i].MediaIDs)...)
			}
		}
		if len(mediaIDs) > 0 {
			urls, err := s.mediaURLs.ResolveSignedURLs(ctx, mediaIDs)
			if err != nil {
				s.log.Warn("signed URL resolution failed", zap.Error(err))
			} else {
				result.Media = urls
			}
		}
	}

	if opts.WithUser {
		userIDs := make([]string, 0, len(areas))
		seen := make(map[string]bool, len(areas))
		for i := range areas {
			if !seen[areas[i].FromUserID] {
				seen[areas[i].FromUserID] = true
				userIDs = append(userIDs, areas[i].FromUserID)
			}
		}
		if len(userIDs) > 0 {
			users, err := s.users.FindUsers(ctx, userIDs)
			if err != nil {
				s.log.Warn("owner identity lookup failed", zap.Error(err))
			} else {
				result.Users = make(map[string]external.UserSummary, len(users))
				for _, u := range users {
					result.Users[u.ID] = u
				}
			}
		}
	}

	return result, nil
}

// Delete hard-deletes the caller's areas. Cache entries for every deleted
// row, cascaded events included, are invalidated before returning.
func (s *Service) Delete(ctx context.Context, rc external.RequestContext, t area.Type, ids []string) (int, error) {
	if !t.Valid() {
		return 0, area.ValidationError("unknown area type")
	}
	if rc.UserID == "" {
		return 0, area.ValidationError("missing user id")
	}
	if len(ids) == 0 {
		return 0, area.ValidationError("no ids provided")
	}

	deleted, err := s.store.Delete(ctx, t, rc.UserID, ids)
	if err != nil {
		return 0, err
	}

	for i := range deleted {
		s.cache.Invalidate(ctx, deleted[i].Type, deleted[i].ID)
		s.publisher.Publish(area.EventDeleted, &deleted[i])
	}

	return len(deleted), nil
}

// RequestClaim marks a space as having a pending ownership claim by the
// calling user. A space with a claim already pending rejects further
// requests until it is resolved.
func (s *Service) RequestClaim(ctx context.Context, rc external.RequestContext, spaceID string) (*area.Area, error) {
	if rc.UserID == "" {
		return nil, area.ValidationError("missing user id")
	}

	space, err := s.store.GetByID(ctx, area.TypeSpace, spaceID)
	if err != nil {
		return nil, err
	}
	if space.IsClaimPending {
		return nil, area.ValidationError("a claim is already pending for this space")
	}

	pending := true
	updated, err := s.store.Update(ctx, area.TypeSpace, spaceID, space.FromUserID, area.UpdateParams{
		IsClaimPending:    &pending,
		RequestedByUserID: &rc.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, area.TypeSpace, spaceID)
	s.publisher.Publish(area.EventUpdated, updated)

	return updated, nil
}

// CheckIn records a visit to a space and claims any check-in incentive.
// An insufficient-funds ledger rejection is surfaced alongside the recorded
// visit so the caller can distinguish "no reward rule" from "owner broke".
func (s *Service) CheckIn(ctx context.Context, rc external.RequestContext, spaceID string) (*area.CheckIn, int, error) {
	if rc.UserID == "" {
		return nil, 0, area.ValidationError("missing user id")
	}

	space, err := s.store.GetByID(ctx, area.TypeSpace, spaceID)
	if err != nil {
		return nil, 0, err
	}

	checkIn, err := s.checkIns.Record(ctx, spaceID, rc.UserID)
	if err != nil {
		return nil, 0, err
	}

	coins, err := s.rewards.Claim(ctx, rc, space, rc.UserID, area.IncentiveKeyCheckIn)
	if err != nil {
		return checkIn, 0, err
	}

	return checkIn, coins, nil
}

// regionFor reverse-geocodes the centroid once at creation time; a geocoder
// failure falls back to the unknown region rather than failing the create.
func (s *Service) regionFor(ctx context.Context, center geo.Point) string {
	region, err := s.geocoder.RegionCode(ctx, center)
	if err != nil {
		s.log.Warn("region lookup failed", zap.Error(err))
		return geo.RegionUnknown
	}
	return region
}

// normalizeMedia turns inline media params into stored media rows, or
// resolves the paths behind caller-supplied media ids for the async screen.
func (s *Service) normalizeMedia(ctx context.Context, p area.CreateParams) (mediaIDs string, paths []string, err error) {
	if len(p.Media) > 0 {
		records := make([]area.Media, len(p.Media))
		for i, m := range p.Media {
			records[i] = area.Media{
				FromUserID: p.FromUserID,
				Type:       m.Type,
				Path:       m.Path,
			}
			paths = append(paths, m.Path)
		}
		ids, err := s.media.Create(ctx, records)
		if err != nil {
			return "", nil, err
		}
		return strings.Join(ids, ","), paths, nil
	}

	if p.MediaIDs != "" {
		records, err := s.media.GetByIDs(ctx, splitIDs(p.MediaIDs))
		if err != nil {
			return "", nil, err
		}
		for _, m := range records {
			paths = append(paths, m.Path)
		}
		return p.MediaIDs, paths, nil
	}

	return "", nil, nil
}

// sanitizeNotificationMsg derives the push teaser: the provided teaser or
// the message, newlines flattened, capped at 100 characters.
func sanitizeNotificationMsg(teaser, message string) string {
	msg := teaser
	if strings.TrimSpace(msg) == "" {
		msg = message
	}

	msg = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(msg)
	msg = strings.TrimSpace(msg)

	if runes := []rune(msg); len(runes) > notificationMsgMaxLen {
		msg = string(runes[:notificationMsgMaxLen])
	}
	return msg
}

func splitIDs(csv string) []string {
	parts := strings.Split(csv, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
