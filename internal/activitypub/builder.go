// Package activitypub constructs the JSON-LD documents the engine publishes:
// actor profiles and the Create/Update/Delete/Announce/Accept activities.
// Construction is pure; nothing here touches storage or the network.
package activitypub

import (
	"net/url"
	"time"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/google/uuid"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/domain"
)

type Builder struct {
	cfg config.Configuration
}

func NewBuilder(cfg config.Configuration) *Builder {
	return &Builder{cfg: cfg}
}

// actorDoc is the intersection of the Application, Person and Group types
// the actor document builder needs. All three are record-layout-identical
// for our purposes; only the serialized type name differs.
type actorDoc interface {
	vocab.Type
	SetJSONLDId(vocab.JSONLDIdProperty)
	SetActivityStreamsPreferredUsername(vocab.ActivityStreamsPreferredUsernameProperty)
	SetActivityStreamsName(vocab.ActivityStreamsNameProperty)
	SetActivityStreamsSummary(vocab.ActivityStreamsSummaryProperty)
	SetActivityStreamsInbox(vocab.ActivityStreamsInboxProperty)
	SetActivityStreamsOutbox(vocab.ActivityStreamsOutboxProperty)
	SetActivityStreamsFollowers(vocab.ActivityStreamsFollowersProperty)
	SetActivityStreamsUrl(vocab.ActivityStreamsUrlProperty)
	SetActivityStreamsIcon(vocab.ActivityStreamsIconProperty)
	SetActivityStreamsEndpoints(vocab.ActivityStreamsEndpointsProperty)
	SetW3IDSecurityV1PublicKey(vocab.W3IDSecurityV1PublicKeyProperty)
}

// ActorDocument builds the dereferenceable profile for an actor, including
// its published public key.
func (b *Builder) ActorDocument(actor domain.Actor, publicKeyPem string) vocab.Type {
	var doc actorDoc
	switch actor.Type {
	case domain.ActorInstance:
		doc = streams.NewActivityStreamsApplication()
	case domain.ActorGroup:
		doc = streams.NewActivityStreamsGroup()
	default:
		doc = streams.NewActivityStreamsPerson()
	}

	doc.SetJSONLDId(idProp(actor.Uri))

	username := streams.NewActivityStreamsPreferredUsernameProperty()
	username.SetXMLSchemaString(actor.Username)
	doc.SetActivityStreamsPreferredUsername(username)

	if actor.Name != "" {
		name := streams.NewActivityStreamsNameProperty()
		name.AppendXMLSchemaString(actor.Name)
		doc.SetActivityStreamsName(name)
	}

	if actor.Summary != "" {
		summary := streams.NewActivityStreamsSummaryProperty()
		summary.AppendXMLSchemaString(actor.Summary)
		doc.SetActivityStreamsSummary(summary)
	}

	inbox := streams.NewActivityStreamsInboxProperty()
	inbox.SetIRI(actor.Inbox)
	doc.SetActivityStreamsInbox(inbox)

	outbox := streams.NewActivityStreamsOutboxProperty()
	outbox.SetIRI(actor.Outbox)
	doc.SetActivityStreamsOutbox(outbox)

	followers := streams.NewActivityStreamsFollowersProperty()
	followers.SetIRI(actor.Followers)
	doc.SetActivityStreamsFollowers(followers)

	urlProp := streams.NewActivityStreamsUrlProperty()
	urlProp.AppendIRI(domain.ProfileUrl(b.cfg.PublicUrl, actor))
	doc.SetActivityStreamsUrl(urlProp)

	if actor.IconUrl != "" {
		if iconUri, err := url.Parse(actor.IconUrl); err == nil {
			icon := streams.NewActivityStreamsIconProperty()
			icon.AppendActivityStreamsImage(image(iconUri))
			doc.SetActivityStreamsIcon(icon)
		}
	}

	// Advertise the shared inbox so busy remotes can collapse deliveries to
	// many local followers into one POST.
	sharedInbox := streams.NewActivityStreamsSharedInboxProperty()
	sharedInbox.SetIRI(b.cfg.Url.JoinPath("activitypub", "inbox"))
	endpoints := streams.NewActivityStreamsEndpoints()
	endpoints.SetActivityStreamsSharedInbox(sharedInbox)
	endpointsProp := streams.NewActivityStreamsEndpointsProperty()
	endpointsProp.AppendActivityStreamsEndpoints(endpoints)
	doc.SetActivityStreamsEndpoints(endpointsProp)

	doc.SetW3IDSecurityV1PublicKey(publicKeyProp(actor, publicKeyPem))
	return doc
}

func publicKeyProp(actor domain.Actor, publicKeyPem string) vocab.W3IDSecurityV1PublicKeyProperty {
	keyProp := streams.NewW3IDSecurityV1PublicKeyProperty()
	key := streams.NewW3IDSecurityV1PublicKey()

	key.SetJSONLDId(idProp(actor.KeyId()))

	owner := streams.NewW3IDSecurityV1OwnerProperty()
	owner.SetIRI(actor.Uri)
	key.SetW3IDSecurityV1Owner(owner)

	pem := streams.NewW3IDSecurityV1PublicKeyPemProperty()
	pem.Set(publicKeyPem)
	key.SetW3IDSecurityV1PublicKeyPem(pem)

	keyProp.AppendW3IDSecurityV1PublicKey(key)
	return keyProp
}

// Note builds the federated representation of a post. The note id derives
// from the numeric post id; the human-facing slug URL only appears in the
// url property.
func (b *Builder) Note(actor domain.Actor, post domain.Post) vocab.ActivityStreamsNote {
	note := streams.NewActivityStreamsNote()

	note.SetJSONLDId(idProp(NoteUri(b.cfg.Url, post.ID)))

	attributed := streams.NewActivityStreamsAttributedToProperty()
	attributed.AppendIRI(actor.Uri)
	note.SetActivityStreamsAttributedTo(attributed)

	if post.Title != "" {
		name := streams.NewActivityStreamsNameProperty()
		name.AppendXMLSchemaString(post.Title)
		note.SetActivityStreamsName(name)
	}

	content := streams.NewActivityStreamsContentProperty()
	content.AppendXMLSchemaString(post.Body)
	note.SetActivityStreamsContent(content)

	published := streams.NewActivityStreamsPublishedProperty()
	published.Set(post.Published.UTC())
	note.SetActivityStreamsPublished(published)

	urlProp := streams.NewActivityStreamsUrlProperty()
	urlProp.AppendIRI(b.cfg.PublicUrl.JoinPath("posts", post.Slug))
	note.SetActivityStreamsUrl(urlProp)

	to := streams.NewActivityStreamsToProperty()
	to.AppendIRI(domain.Public)
	note.SetActivityStreamsTo(to)

	cc := streams.NewActivityStreamsCcProperty()
	cc.AppendIRI(actor.Followers)
	note.SetActivityStreamsCc(cc)

	if post.GroupUsername != "" {
		// FEP-1b12: point the note at the community's Group actor.
		audience := streams.NewActivityStreamsAudienceProperty()
		audience.AppendIRI(domain.ActorUri(b.cfg.Url, domain.ActorGroup, post.GroupUsername))
		note.SetActivityStreamsAudience(audience)
	}

	if post.ThumbnailUrl != "" {
		if thumb, err := url.Parse(post.ThumbnailUrl); err == nil {
			attachment := streams.NewActivityStreamsAttachmentProperty()
			attachment.AppendActivityStreamsImage(image(thumb))
			note.SetActivityStreamsAttachment(attachment)
		}
	}

	return note
}

// Create wraps a post's note in a Create activity addressed to the public
// collection and the actor's followers.
func (b *Builder) Create(actor domain.Actor, post domain.Post) vocab.ActivityStreamsCreate {
	create := streams.NewActivityStreamsCreate()
	create.SetJSONLDId(idProp(ActivityUri(b.cfg.Url, VerbCreate, post.ID)))

	actorProp := streams.NewActivityStreamsActorProperty()
	actorProp.AppendIRI(actor.Uri)
	create.SetActivityStreamsActor(actorProp)

	note := b.Note(actor, post)
	object := streams.NewActivityStreamsObjectProperty()
	object.AppendActivityStreamsNote(note)
	create.SetActivityStreamsObject(object)

	create.SetActivityStreamsTo(note.GetActivityStreamsTo())
	create.SetActivityStreamsCc(note.GetActivityStreamsCc())
	if audience := note.GetActivityStreamsAudience(); audience != nil {
		create.SetActivityStreamsAudience(audience)
	}

	return create
}

// Announce is how a community boosts a member's post to the community's own
// followers: the Group actor announces the full Create activity built for
// the posting user (FEP-1b12).
func (b *Builder) Announce(group, userActor domain.Actor, post domain.Post) vocab.ActivityStreamsAnnounce {
	announce := streams.NewActivityStreamsAnnounce()
	announce.SetJSONLDId(idProp(ActivityUri(b.cfg.Url, VerbAnnounce, post.ID)))

	actorProp := streams.NewActivityStreamsActorProperty()
	actorProp.AppendIRI(group.Uri)
	announce.SetActivityStreamsActor(actorProp)

	object := streams.NewActivityStreamsObjectProperty()
	object.AppendActivityStreamsCreate(b.Create(userActor, post))
	announce.SetActivityStreamsObject(object)

	to := streams.NewActivityStreamsToProperty()
	to.AppendIRI(domain.Public)
	announce.SetActivityStreamsTo(to)

	cc := streams.NewActivityStreamsCcProperty()
	cc.AppendIRI(group.Followers)
	announce.SetActivityStreamsCc(cc)

	audience := streams.NewActivityStreamsAudienceProperty()
	audience.AppendIRI(group.Uri)
	announce.SetActivityStreamsAudience(audience)

	return announce
}

// Update carries the edited note. Each edit gets a distinct activity id; the
// Create id is never reused.
func (b *Builder) Update(actor domain.Actor, post domain.Post) vocab.ActivityStreamsUpdate {
	update := streams.NewActivityStreamsUpdate()
	update.SetJSONLDId(idProp(TimestampedActivityUri(b.cfg.Url, VerbUpdate, post.ID, post.Edited)))

	actorProp := streams.NewActivityStreamsActorProperty()
	actorProp.AppendIRI(actor.Uri)
	update.SetActivityStreamsActor(actorProp)

	note := b.Note(actor, post)
	updated := streams.NewActivityStreamsUpdatedProperty()
	updated.Set(post.Edited.UTC())
	note.SetActivityStreamsUpdated(updated)

	object := streams.NewActivityStreamsObjectProperty()
	object.AppendActivityStreamsNote(note)
	update.SetActivityStreamsObject(object)

	update.SetActivityStreamsTo(note.GetActivityStreamsTo())
	update.SetActivityStreamsCc(note.GetActivityStreamsCc())

	return update
}

// Delete carries a Tombstone with the note's id, never the full note.
func (b *Builder) Delete(actor domain.Actor, postID int64) vocab.ActivityStreamsDelete {
	del := streams.NewActivityStreamsDelete()
	del.SetJSONLDId(idProp(TimestampedActivityUri(b.cfg.Url, VerbDelete, postID, time.Now())))

	actorProp := streams.NewActivityStreamsActorProperty()
	actorProp.AppendIRI(actor.Uri)
	del.SetActivityStreamsActor(actorProp)

	tombstone := streams.NewActivityStreamsTombstone()
	tombstone.SetJSONLDId(idProp(NoteUri(b.cfg.Url, postID)))

	object := streams.NewActivityStreamsObjectProperty()
	object.AppendActivityStreamsTombstone(tombstone)
	del.SetActivityStreamsObject(object)

	to := streams.NewActivityStreamsToProperty()
	to.AppendIRI(domain.Public)
	del.SetActivityStreamsTo(to)

	cc := streams.NewActivityStreamsCcProperty()
	cc.AppendIRI(actor.Followers)
	del.SetActivityStreamsCc(cc)

	return del
}

// Accept answers an inbound Follow, echoing the follow activity in the
// object property the way Mastodon expects.
func (b *Builder) Accept(actor domain.Actor, follow vocab.ActivityStreamsFollow) vocab.ActivityStreamsAccept {
	accept := streams.NewActivityStreamsAccept()
	accept.SetJSONLDId(idProp(b.cfg.Url.JoinPath("activitypub", "activities", VerbAccept, uuid.NewString())))

	actorProp := streams.NewActivityStreamsActorProperty()
	actorProp.AppendIRI(actor.Uri)
	accept.SetActivityStreamsActor(actorProp)

	object := streams.NewActivityStreamsObjectProperty()
	object.AppendActivityStreamsFollow(follow)
	accept.SetActivityStreamsObject(object)

	return accept
}

func idProp(iri *url.URL) vocab.JSONLDIdProperty {
	id := streams.NewJSONLDIdProperty()
	id.Set(iri)
	return id
}

func image(iri *url.URL) vocab.ActivityStreamsImage {
	img := streams.NewActivityStreamsImage()
	urlProp := streams.NewActivityStreamsUrlProperty()
	urlProp.AppendIRI(iri)
	img.SetActivityStreamsUrl(urlProp)
	return img
}
