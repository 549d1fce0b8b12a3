package activitypub

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/domain"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	u, err := url.Parse("https://tarn.example")
	if err != nil {
		t.Fatal(err)
	}
	return NewBuilder(config.Configuration{
		Domain:       "tarn.example",
		PublicDomain: "tarn.example",
		Url:          u,
		PublicUrl:    u,
	})
}

func makeActor(t *testing.T, typ domain.ActorType, username string) domain.Actor {
	t.Helper()
	base, _ := url.Parse("https://tarn.example")
	uri := domain.ActorUri(base, typ, username)
	return domain.Actor{
		ID:        1,
		Type:      typ,
		Username:  username,
		Uri:       uri,
		Inbox:     uri.JoinPath("inbox"),
		Outbox:    uri.JoinPath("outbox"),
		Followers: uri.JoinPath("followers"),
		Name:      username,
	}
}

func serialize(t *testing.T, a vocab.Type) map[string]any {
	t.Helper()
	m, err := streams.Serialize(a)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return m
}

// addressees flattens a to/cc value, which serializes as a bare string when
// the property holds a single IRI.
func addressees(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		var out []string
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func object(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	obj, ok := m["object"].(map[string]any)
	if !ok {
		t.Fatalf("object is not an embedded document: %#v", m["object"])
	}
	return obj
}

var post = domain.Post{
	ID:             42,
	Slug:           "interesting-links-this-week",
	Title:          "Interesting links this week",
	Body:           "<p>some links</p>",
	AuthorUsername: "sarah",
	Published:      time.Unix(1700000000, 0),
	Edited:         time.Unix(1700003600, 0),
}

func TestCreate(t *testing.T) {
	b := testBuilder(t)
	actor := makeActor(t, domain.ActorUser, "sarah")

	m := serialize(t, b.Create(actor, post))

	if got := m["id"].(string); got != "https://tarn.example/activitypub/activities/create/42" {
		t.Errorf("activity id = %s", got)
	}
	if got := m["actor"].(string); got != actor.Uri.String() {
		t.Errorf("actor = %s", got)
	}

	note := object(t, m)
	if got := note["id"].(string); !strings.Contains(got, "/activitypub/notes/42") {
		t.Errorf("note id = %s, want the canonical notes path", got)
	}
	if got := note["url"].(string); got != "https://tarn.example/posts/interesting-links-this-week" {
		t.Errorf("note url = %s", got)
	}

	to := addressees(m["to"])
	if len(to) != 1 || to[0] != domain.Public.String() {
		t.Errorf("to = %v, want the public collection", to)
	}
	cc := addressees(m["cc"])
	if len(cc) != 1 || cc[0] != actor.Followers.String() {
		t.Errorf("cc = %v, want the followers collection", cc)
	}
	if _, ok := m["audience"]; ok {
		t.Error("no audience expected for a post outside a community")
	}
}

func TestCreateWithGroupAudience(t *testing.T) {
	b := testBuilder(t)
	actor := makeActor(t, domain.ActorUser, "sarah")

	communityPost := post
	communityPost.GroupUsername = "birdwatching"

	m := serialize(t, b.Create(actor, communityPost))
	audience := addressees(m["audience"])
	if len(audience) != 1 || audience[0] != "https://tarn.example/activitypub/groups/birdwatching" {
		t.Errorf("audience = %v, want the group actor", audience)
	}
}

func TestAnnounceWrapsFullCreate(t *testing.T) {
	b := testBuilder(t)
	group := makeActor(t, domain.ActorGroup, "birdwatching")
	user := makeActor(t, domain.ActorUser, "sarah")

	m := serialize(t, b.Announce(group, user, post))

	if got := m["actor"].(string); got != group.Uri.String() {
		t.Errorf("announce actor = %s, want the group", got)
	}
	audience := addressees(m["audience"])
	if len(audience) != 1 || audience[0] != group.Uri.String() {
		t.Errorf("audience = %v, want the group actor", audience)
	}

	create := object(t, m)
	if got := create["type"].(string); got != "Create" {
		t.Errorf("announced object type = %s, want Create", got)
	}
	if got := create["actor"].(string); got != user.Uri.String() {
		t.Errorf("announced create actor = %s, want the user", got)
	}
	note := object(t, create)
	if got := note["type"].(string); got != "Note" {
		t.Errorf("inner object type = %s, want Note", got)
	}
}

func TestUpdateIdsAreUniquePerEdit(t *testing.T) {
	b := testBuilder(t)
	actor := makeActor(t, domain.ActorUser, "sarah")

	first := serialize(t, b.Update(actor, post))

	later := post
	later.Edited = post.Edited.Add(time.Hour)
	second := serialize(t, b.Update(actor, later))

	if first["id"] == second["id"] {
		t.Errorf("two edits produced the same activity id %v", first["id"])
	}
	if first["id"] == "https://tarn.example/activitypub/activities/create/42" {
		t.Error("update must not reuse the create id")
	}
	note := object(t, first)
	if _, ok := note["updated"]; !ok {
		t.Error("updated timestamp missing from the edited note")
	}
}

func TestDeleteCarriesTombstone(t *testing.T) {
	b := testBuilder(t)
	actor := makeActor(t, domain.ActorUser, "sarah")

	m := serialize(t, b.Delete(actor, post.ID))

	tomb := object(t, m)
	if got := tomb["type"].(string); got != "Tombstone" {
		t.Errorf("object type = %s, want Tombstone", got)
	}
	if got := tomb["id"].(string); !strings.HasSuffix(got, "/activitypub/notes/42") {
		t.Errorf("tombstone id = %s, want the note id", got)
	}
	if _, ok := tomb["content"]; ok {
		t.Error("tombstone must not carry the note content")
	}
}

func TestActorDocument(t *testing.T) {
	b := testBuilder(t)

	cases := []struct {
		actorType domain.ActorType
		wantType  string
	}{
		{domain.ActorInstance, "Application"},
		{domain.ActorUser, "Person"},
		{domain.ActorGroup, "Group"},
	}

	for _, c := range cases {
		actor := makeActor(t, c.actorType, "sample")
		m := serialize(t, b.ActorDocument(actor, "-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----\n"))

		if got := m["type"].(string); got != c.wantType {
			t.Errorf("%s actor serialized as %s, want %s", c.actorType, got, c.wantType)
		}
		if got := m["preferredUsername"].(string); got != "sample" {
			t.Errorf("preferredUsername = %s", got)
		}
		if got := m["inbox"].(string); got != actor.Inbox.String() {
			t.Errorf("inbox = %s", got)
		}

		key, ok := m["publicKey"].(map[string]any)
		if !ok {
			t.Fatalf("publicKey missing or wrong shape: %#v", m["publicKey"])
		}
		if got := key["id"].(string); got != actor.Uri.String()+"#main-key" {
			t.Errorf("key id = %s", got)
		}
		if got := key["owner"].(string); got != actor.Uri.String() {
			t.Errorf("key owner = %s", got)
		}
		if pem := key["publicKeyPem"].(string); !strings.Contains(pem, "PUBLIC KEY") {
			t.Errorf("publicKeyPem = %q", pem)
		}

		endpoints, ok := m["endpoints"].(map[string]any)
		if !ok {
			t.Fatalf("endpoints missing or wrong shape: %#v", m["endpoints"])
		}
		if got := endpoints["sharedInbox"].(string); got != "https://tarn.example/activitypub/inbox" {
			t.Errorf("sharedInbox = %s", got)
		}

		ctx, ok := m["@context"]
		if !ok {
			t.Fatal("@context missing")
		}
		var found bool
		for _, e := range addressees(ctx) {
			if e == "https://www.w3.org/ns/activitystreams" {
				found = true
			}
		}
		if !found {
			t.Errorf("@context %v lacks the activitystreams namespace", ctx)
		}
	}
}
