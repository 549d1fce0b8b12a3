package inbound

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/tarnsocial/tarn/internal/federation"
)

// remoteProfile is the slice of a remote actor document the engine keeps.
type remoteProfile struct {
	username    string
	displayName string
	iconUrl     string
	software    string
	inbox       *url.URL
	sharedInbox *url.URL
}

func (d *Dispatcher) fetchProfile(ctx context.Context, actor *url.URL) (remoteProfile, error) {
	doc, err := d.fetcher.Get(ctx, actor)
	if err != nil {
		return remoteProfile{}, err
	}

	p := remoteProfile{
		username: stringField(doc, "preferredUsername"),
		software: detectSoftware(actor, doc),
	}
	p.displayName = stringField(doc, "name")
	if p.displayName == "" {
		p.displayName = p.username
	}

	if icon, ok := doc["icon"].(map[string]any); ok {
		p.iconUrl = stringField(icon, "url")
	}

	inbox := stringField(doc, "inbox")
	if inbox == "" {
		return remoteProfile{}, fmt.Errorf("%w: inbox in %s", federation.ErrMissingProperty, actor)
	}
	if p.inbox, err = url.Parse(inbox); err != nil {
		return remoteProfile{}, fmt.Errorf("%w: inbox %q", federation.ErrUnprocessablePropValue, inbox)
	}

	if endpoints, ok := doc["endpoints"].(map[string]any); ok {
		if shared := stringField(endpoints, "sharedInbox"); shared != "" {
			// Ignored when unparseable; the personal inbox still works.
			p.sharedInbox, _ = url.Parse(shared)
		}
	}

	return p, nil
}

// detectSoftware guesses the remote service from the actor document, falling
// back to well-known URI shapes. Best effort, display only.
func detectSoftware(actor *url.URL, doc map[string]any) string {
	if gen, ok := doc["generator"].(map[string]any); ok {
		if name := stringField(gen, "name"); name != "" {
			return strings.ToLower(name)
		}
	}
	switch {
	case strings.HasPrefix(actor.Path, "/c/"), strings.HasPrefix(actor.Path, "/u/"):
		return "lemmy"
	case strings.HasPrefix(actor.Path, "/users/"):
		return "mastodon"
	}
	return ""
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

// iriCarrier is the shape shared by property iterators whose range includes
// both IRIs and embedded objects.
type iriCarrier interface {
	IsIRI() bool
	GetIRI() *url.URL
	GetType() vocab.Type
}

func carrierIri(it iriCarrier) *url.URL {
	if it.IsIRI() {
		return it.GetIRI()
	}
	if t := it.GetType(); t != nil {
		if id := t.GetJSONLDId(); id != nil {
			return id.Get()
		}
	}
	return nil
}

func actorIri(prop vocab.ActivityStreamsActorProperty) *url.URL {
	if prop == nil {
		return nil
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		if u := carrierIri(it); u != nil {
			return u
		}
	}
	return nil
}

func objectIri(prop vocab.ActivityStreamsObjectProperty) *url.URL {
	if prop == nil {
		return nil
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		if u := carrierIri(it); u != nil {
			return u
		}
	}
	return nil
}

func inReplyToIri(prop vocab.ActivityStreamsInReplyToProperty) *url.URL {
	if prop == nil {
		return nil
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		if u := carrierIri(it); u != nil {
			return u
		}
	}
	return nil
}

func attributedToIri(prop vocab.ActivityStreamsAttributedToProperty) *url.URL {
	if prop == nil {
		return nil
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		if u := carrierIri(it); u != nil {
			return u
		}
	}
	return nil
}

func firstNote(prop vocab.ActivityStreamsObjectProperty) vocab.ActivityStreamsNote {
	if prop == nil {
		return nil
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		if it.IsActivityStreamsNote() {
			return it.GetActivityStreamsNote()
		}
	}
	return nil
}

func contentString(prop vocab.ActivityStreamsContentProperty) string {
	if prop == nil {
		return ""
	}
	for it := prop.Begin(); it != prop.End(); it = it.Next() {
		switch {
		case it.IsXMLSchemaString():
			return it.GetXMLSchemaString()
		case it.IsRDFLangString():
			for _, v := range it.GetRDFLangString() {
				return v
			}
		}
	}
	return ""
}
