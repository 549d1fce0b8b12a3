package inbound

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	mock_db "github.com/tarnsocial/tarn/internal/mocks"
	"go.uber.org/mock/gomock"
)

type fakeVerifier struct {
	keyId string
	err   error
}

func (v *fakeVerifier) Verify(ctx context.Context, r *http.Request, body []byte) (string, error) {
	return v.keyId, v.err
}

type fakeFetcher struct {
	docs map[string]map[string]any
	// failures makes the next n fetches return a transient error.
	failures int
}

func (f *fakeFetcher) Get(ctx context.Context, iri *url.URL) (map[string]any, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("503 Service Unavailable")
	}
	doc, ok := f.docs[iri.String()]
	if !ok {
		return nil, fmt.Errorf("404 Not Found: %s", iri)
	}
	return doc, nil
}

type sentActivity struct {
	actorID  int64
	inbox    *url.URL
	activity vocab.Type
}

type fakeSender struct {
	sent []sentActivity
}

func (s *fakeSender) Send(ctx context.Context, actorID int64, inbox *url.URL, activity vocab.Type) error {
	s.sent = append(s.sent, sentActivity{actorID, inbox, activity})
	return nil
}

const (
	remoteActor = "https://remote.example/users/bob"
	remoteInbox = "https://remote.example/users/bob/inbox"
	sharedInbox = "https://remote.example/inbox"
)

func testConfig(t *testing.T) config.Configuration {
	t.Helper()
	u, err := url.Parse("https://tarn.example")
	if err != nil {
		t.Fatal(err)
	}
	return config.Configuration{
		Domain:            "tarn.example",
		PublicDomain:      "tarn.example",
		Url:               u,
		PublicUrl:         u,
		AutoAcceptFollows: true,
		RequireSignatures: true,
	}
}

func localActor(t *testing.T, typ domain.ActorType, username string) domain.Actor {
	t.Helper()
	base, _ := url.Parse("https://tarn.example")
	uri := domain.ActorUri(base, typ, username)
	return domain.Actor{
		ID:        7,
		Type:      typ,
		Username:  username,
		Uri:       uri,
		Inbox:     uri.JoinPath("inbox"),
		Outbox:    uri.JoinPath("outbox"),
		Followers: uri.JoinPath("followers"),
	}
}

type fixture struct {
	dispatcher *Dispatcher
	db         *mock_db.MockDB
	sender     *fakeSender
	verifier   *fakeVerifier
	fetcher    *fakeFetcher
}

func newFixture(t *testing.T, cfg config.Configuration) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockDB := mock_db.NewMockDB(ctrl)
	sender := &fakeSender{}
	verifier := &fakeVerifier{keyId: remoteActor + "#main-key"}
	fetcher := &fakeFetcher{docs: map[string]map[string]any{
		remoteActor: {
			"id":                remoteActor,
			"type":              "Person",
			"preferredUsername": "bob",
			"name":              "Bob",
			"inbox":             remoteInbox,
			"endpoints":         map[string]any{"sharedInbox": sharedInbox},
		},
	}}

	d, err := New(cfg, mockDB, activitypub.NewBuilder(cfg), verifier, fetcher, sender)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{dispatcher: d, db: mockDB, sender: sender, verifier: verifier, fetcher: fetcher}
}

func dispatch(t *testing.T, f *fixture, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "https://tarn.example/activitypub/users/alice/inbox", strings.NewReader(body))
	return f.dispatcher.Dispatch(context.Background(), req, []byte(body))
}

func followJson(target string) string {
	return fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/1",
		"type": "Follow",
		"actor": %q,
		"object": %q
	}`, remoteActor, target)
}

func TestFollowRecordsFollowerAndAccepts(t *testing.T) {
	f := newFixture(t, testConfig(t))
	alice := localActor(t, domain.ActorUser, "alice")

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Cond(func(u *url.URL) bool {
		return u.String() == alice.Uri.String()
	})).Return(alice, nil)
	f.db.EXPECT().AddFollower(gomock.Any(), gomock.Cond(func(fl domain.Follower) bool {
		return fl.ActorID == alice.ID &&
			fl.Uri.String() == remoteActor &&
			fl.SharedInbox.String() == sharedInbox &&
			fl.Username == "bob" &&
			fl.Domain == "remote.example"
	})).Return(nil)

	if err := dispatch(t, f, followJson(alice.Uri.String())); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(f.sender.sent) != 1 {
		t.Fatalf("sent %d activities, want 1 Accept", len(f.sender.sent))
	}
	accept := f.sender.sent[0]
	if accept.actorID != alice.ID {
		t.Errorf("accept sent as actor %d, want %d", accept.actorID, alice.ID)
	}
	if accept.inbox.String() != remoteInbox {
		t.Errorf("accept sent to %s, want the follower's inbox", accept.inbox)
	}

	m, err := streams.Serialize(accept.activity)
	if err != nil {
		t.Fatal(err)
	}
	if m["type"] != "Accept" {
		t.Errorf("sent activity type = %v, want Accept", m["type"])
	}
	obj, ok := m["object"].(map[string]any)
	if !ok || obj["type"] != "Follow" {
		t.Errorf("accept object = %#v, want the echoed Follow", m["object"])
	}
}

func TestFollowForUnknownActorIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig(t))

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Any()).Return(domain.Actor{}, db.ErrNotFound)

	if err := dispatch(t, f, followJson("https://tarn.example/activitypub/users/nobody")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("accept sent for an unknown local actor")
	}
}

func TestDuplicateActivityIsDropped(t *testing.T) {
	f := newFixture(t, testConfig(t))
	alice := localActor(t, domain.ActorUser, "alice")

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(false, nil)

	if err := dispatch(t, f, followJson(alice.Uri.String())); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(f.sender.sent) != 0 {
		t.Error("replayed delivery was processed again")
	}
}

func TestFailedHandlingReleasesJournalEntry(t *testing.T) {
	f := newFixture(t, testConfig(t))
	alice := localActor(t, domain.ActorUser, "alice")
	f.fetcher.failures = 1

	gomock.InOrder(
		f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil),
		f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Any()).Return(alice, nil),
		f.db.EXPECT().RemoveInboundActivity(gomock.Any(), "https://remote.example/activities/1").Return(nil),

		// The remote retries the same activity id once the profile fetch
		// recovers; the journal must not treat it as a duplicate.
		f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil),
		f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Any()).Return(alice, nil),
		f.db.EXPECT().AddFollower(gomock.Any(), gomock.Any()).Return(nil),
	)

	if err := dispatch(t, f, followJson(alice.Uri.String())); err == nil {
		t.Fatal("expected the first dispatch to fail on the flaky fetch")
	}
	if err := dispatch(t, f, followJson(alice.Uri.String())); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("sent %d activities, want the retried Follow's Accept", len(f.sender.sent))
	}
}

func TestUnverifiableActivityIsRejected(t *testing.T) {
	f := newFixture(t, testConfig(t))
	f.verifier.err = errors.New("bad signature")

	err := dispatch(t, f, followJson("https://tarn.example/activitypub/users/alice"))
	if !errors.Is(err, ErrUnverifiable) {
		t.Errorf("err = %v, want ErrUnverifiable", err)
	}
}

func TestUnverifiedAcceptedWhenEnforcementOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.RequireSignatures = false
	f := newFixture(t, cfg)
	f.verifier.err = errors.New("bad signature")

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Any()).Return(domain.Actor{}, db.ErrNotFound)

	if err := dispatch(t, f, followJson("https://tarn.example/activitypub/users/alice")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestKeyAndActorHostMismatch(t *testing.T) {
	f := newFixture(t, testConfig(t))
	f.verifier.keyId = "https://elsewhere.example/users/mallory#main-key"

	err := dispatch(t, f, followJson("https://tarn.example/activitypub/users/alice"))
	if !errors.Is(err, ErrActorMismatch) {
		t.Errorf("err = %v, want ErrActorMismatch", err)
	}
}

func likeJson(id, object string) string {
	return fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": %q,
		"type": "Like",
		"actor": %q,
		"object": %q
	}`, id, remoteActor, object)
}

func TestLikeIncrementsCounterOnce(t *testing.T) {
	f := newFixture(t, testConfig(t))
	post := domain.Post{ID: 42, Slug: "some-post"}

	gomock.InOrder(
		f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil),
		f.db.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(post, nil),
		f.db.EXPECT().AddEngagement(gomock.Any(), int64(42), remoteActor, domain.VerbLike).Return(true, nil),
		f.db.EXPECT().IncrementCounter(gomock.Any(), int64(42), domain.CounterLikes).Return(nil),

		// Same actor likes again under a fresh activity id: journaled, but
		// the engagement row already exists so no counter bump.
		f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil),
		f.db.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(post, nil),
		f.db.EXPECT().AddEngagement(gomock.Any(), int64(42), remoteActor, domain.VerbLike).Return(false, nil),
	)

	note := "https://tarn.example/activitypub/notes/42"
	if err := dispatch(t, f, likeJson("https://remote.example/activities/like-1", note)); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if err := dispatch(t, f, likeJson("https://remote.example/activities/like-2", note)); err != nil {
		t.Fatalf("second like: %v", err)
	}
}

func TestAnnounceResolvesPublicPostUrl(t *testing.T) {
	f := newFixture(t, testConfig(t))
	post := domain.Post{ID: 9, Slug: "interesting-links"}

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().GetPostBySlug(gomock.Any(), "interesting-links").Return(post, nil)
	f.db.EXPECT().AddEngagement(gomock.Any(), int64(9), remoteActor, domain.VerbAnnounce).Return(true, nil)
	f.db.EXPECT().IncrementCounter(gomock.Any(), int64(9), domain.CounterShares).Return(nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/share-1",
		"type": "Announce",
		"actor": %q,
		"object": "https://tarn.example/posts/interesting-links"
	}`, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestEngagementWithForeignObjectIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig(t))

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)

	if err := dispatch(t, f, likeJson("https://remote.example/activities/like-3", "https://other.example/posts/1")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestUndoLikeDecrementsCounter(t *testing.T) {
	f := newFixture(t, testConfig(t))
	post := domain.Post{ID: 42}

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(post, nil)
	f.db.EXPECT().RemoveEngagement(gomock.Any(), int64(42), remoteActor, domain.VerbLike).Return(true, nil)
	f.db.EXPECT().DecrementCounter(gomock.Any(), int64(42), domain.CounterLikes).Return(nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/undo-1",
		"type": "Undo",
		"actor": %q,
		"object": {
			"id": "https://remote.example/activities/like-1",
			"type": "Like",
			"actor": %q,
			"object": "https://tarn.example/activitypub/notes/42"
		}
	}`, remoteActor, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestUndoFollowRemovesFollower(t *testing.T) {
	f := newFixture(t, testConfig(t))
	alice := localActor(t, domain.ActorUser, "alice")

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().FindActorByUri(gomock.Any(), gomock.Any()).Return(alice, nil)
	f.db.EXPECT().RemoveFollower(gomock.Any(), alice.ID, gomock.Cond(func(u *url.URL) bool {
		return u.String() == remoteActor
	})).Return(nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/undo-2",
		"type": "Undo",
		"actor": %q,
		"object": {
			"id": "https://remote.example/activities/1",
			"type": "Follow",
			"actor": %q,
			"object": %q
		}
	}`, remoteActor, remoteActor, alice.Uri.String())
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestCreateReplyIsIngested(t *testing.T) {
	f := newFixture(t, testConfig(t))
	post := domain.Post{ID: 42, Slug: "some-post"}
	remoteUser := domain.RemoteUser{ID: 3, Username: "bob", Domain: "remote.example", Software: "mastodon"}

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(post, nil)
	f.db.EXPECT().FindOrCreateRemoteUser(gomock.Any(), gomock.Cond(func(u domain.RemoteUser) bool {
		return u.Uri.String() == remoteActor && u.Username == "bob" && u.Software == "mastodon"
	})).Return(remoteUser, nil)
	f.db.EXPECT().CreateReply(gomock.Any(), gomock.Cond(func(r domain.Reply) bool {
		return r.PostID == 42 &&
			r.RemoteUserID == 3 &&
			r.Uri.String() == "https://remote.example/notes/777" &&
			strings.Contains(r.Body, "great post")
	})).Return(domain.Reply{ID: 1}, nil)
	f.db.EXPECT().IncrementCounter(gomock.Any(), int64(42), domain.CounterReplies).Return(nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/create-1",
		"type": "Create",
		"actor": %q,
		"object": {
			"id": "https://remote.example/notes/777",
			"type": "Note",
			"attributedTo": %q,
			"inReplyTo": "https://tarn.example/activitypub/notes/42",
			"content": "<p>great post</p>",
			"published": "2026-08-30T12:00:00Z"
		}
	}`, remoteActor, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestCreateDuplicateReplyDoesNotRecount(t *testing.T) {
	f := newFixture(t, testConfig(t))
	post := domain.Post{ID: 42}
	remoteUser := domain.RemoteUser{ID: 3, Username: "bob"}

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)
	f.db.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(post, nil)
	f.db.EXPECT().FindOrCreateRemoteUser(gomock.Any(), gomock.Any()).Return(remoteUser, nil)
	f.db.EXPECT().CreateReply(gomock.Any(), gomock.Any()).Return(domain.Reply{}, db.ErrConflict)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/create-2",
		"type": "Create",
		"actor": %q,
		"object": {
			"id": "https://remote.example/notes/777",
			"type": "Note",
			"attributedTo": %q,
			"inReplyTo": "https://tarn.example/activitypub/notes/42",
			"content": "dup"
		}
	}`, remoteActor, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestCreateWithoutInReplyToIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig(t))

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/create-3",
		"type": "Create",
		"actor": %q,
		"object": {
			"id": "https://remote.example/notes/778",
			"type": "Note",
			"content": "a top level remote post"
		}
	}`, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestUnhandledActivityTypeIsIgnored(t *testing.T) {
	f := newFixture(t, testConfig(t))

	f.db.EXPECT().RecordInboundActivity(gomock.Any(), gomock.Any()).Return(true, nil)

	body := fmt.Sprintf(`{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id": "https://remote.example/activities/move-1",
		"type": "Move",
		"actor": %q,
		"object": "https://remote.example/users/bob"
	}`, remoteActor)
	if err := dispatch(t, f, body); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}
