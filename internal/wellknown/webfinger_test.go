package wellknown

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	mock_db "github.com/tarnsocial/tarn/internal/mocks"
	"github.com/tarnsocial/tarn/internal/registry"
	"github.com/tarnsocial/tarn/internal/state"
	"go.uber.org/mock/gomock"
)

func testState(t *testing.T) (*state.State, *mock_db.MockDB) {
	t.Helper()
	u, err := url.Parse("https://tarn.example")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Configuration{
		Domain:        "tarn.example",
		PublicDomain:  "tarn.example",
		Url:           u,
		PublicUrl:     u,
		ActorUsername: "tarn",
	}
	mockDB := mock_db.NewMockDB(gomock.NewController(t))
	return &state.State{
		DB:       mockDB,
		Config:   cfg,
		Registry: registry.New(cfg, mockDB),
	}, mockDB
}

func storedActor(t *testing.T, typ domain.ActorType, username string) domain.Actor {
	t.Helper()
	base, _ := url.Parse("https://tarn.example")
	uri := domain.ActorUri(base, typ, username)
	return domain.Actor{
		ID:       1,
		Type:     typ,
		Username: username,
		Uri:      uri,
		Inbox:    uri.JoinPath("inbox"),
	}
}

func TestWebfingerUser(t *testing.T) {
	s, mockDB := testState(t)
	sarah := storedActor(t, domain.ActorUser, "sarah")
	mockDB.EXPECT().FindActorByUsername(gomock.Any(), "sarah", domain.ActorUser).Return(sarah, nil)

	r := chi.NewRouter()
	Mount(s, r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:sarah@tarn.example", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/jrd+json" {
		t.Errorf("content type = %s", ct)
	}

	var res WebfingerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Subject != "acct:sarah@tarn.example" {
		t.Errorf("subject = %s", res.Subject)
	}

	var self string
	for _, l := range res.Links {
		if l.Rel == "self" {
			self = l.Href
			if l.Type != "application/activity+json" {
				t.Errorf("self link type = %s", l.Type)
			}
		}
	}
	if self != "https://tarn.example/activitypub/users/sarah" {
		t.Errorf("self = %s", self)
	}
}

func TestWebfingerGroup(t *testing.T) {
	s, mockDB := testState(t)
	group := storedActor(t, domain.ActorGroup, "birdwatching")
	mockDB.EXPECT().FindActorByUsername(gomock.Any(), "birdwatching", domain.ActorGroup).Return(group, nil)

	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	Mount(s, r)
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:%21birdwatching@tarn.example", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var res WebfingerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Subject != "acct:!birdwatching@tarn.example" {
		t.Errorf("subject = %s, want the bang prefix preserved", res.Subject)
	}
	if len(res.Aliases) == 0 || res.Aliases[0] != "https://tarn.example/activitypub/groups/birdwatching" {
		t.Errorf("aliases = %v", res.Aliases)
	}
}

func TestWebfingerInstanceActorShadowsUsers(t *testing.T) {
	s, mockDB := testState(t)
	instance := storedActor(t, domain.ActorInstance, "tarn")
	mockDB.EXPECT().FindActorByUsername(gomock.Any(), "tarn", domain.ActorInstance).Return(instance, nil)

	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	Mount(s, r)
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:tarn@tarn.example", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var res WebfingerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	var self string
	for _, l := range res.Links {
		if l.Rel == "self" {
			self = l.Href
		}
	}
	if self != "https://tarn.example/activitypub/instance" {
		t.Errorf("self = %s, want the instance actor", self)
	}
}

func TestWebfingerUnknownUser(t *testing.T) {
	s, mockDB := testState(t)
	mockDB.EXPECT().FindActorByUsername(gomock.Any(), "nobody", domain.ActorUser).Return(domain.Actor{}, db.ErrNotFound)

	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	Mount(s, r)
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:nobody@tarn.example", nil))

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWebfingerForeignHost(t *testing.T) {
	s, _ := testState(t)

	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	Mount(s, r)
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource=acct:sarah@other.example", nil))

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404 for a foreign host", rec.Code)
	}
}

func TestResponseFor(t *testing.T) {
	s, _ := testState(t)

	got := ResponseFor(s.Config, storedActor(t, domain.ActorUser, "sarah"))
	want := WebfingerResponse{
		Subject: "acct:sarah@tarn.example",
		Aliases: []string{
			"https://tarn.example/activitypub/users/sarah",
			"https://tarn.example/u/sarah",
		},
		Links: []WebfingerLink{
			{Rel: "self", Type: "application/activity+json", Href: "https://tarn.example/activitypub/users/sarah"},
			{Rel: "http://webfinger.net/rel/profile-page", Type: "text/html", Href: "https://tarn.example/u/sarah"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestWebfingerMalformedResource(t *testing.T) {
	s, _ := testState(t)
	r := chi.NewRouter()
	Mount(s, r)

	for _, resource := range []string{"", "sarah@tarn.example", "acct:sarah", "acct:@tarn.example", "acct:!@tarn.example"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/.well-known/webfinger?resource="+url.QueryEscape(resource), nil))
		if rec.Code != 400 {
			t.Errorf("resource %q: status = %d, want 400", resource, rec.Code)
		}
	}
}
