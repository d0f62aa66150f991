package testserver

import (
	"io"
	"net/http"
	"strings"

	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/google/uuid"
)

type video struct {
	UUID  string   `json:"uuid"`
	Title string   `json:"title"`
	Owner string   `json:"owner"`
	Tags  []string `json:"tags"`
	Size  int64    `json:"size"`
}

type doloresService struct {
	s      *Server
	keys   *sessionlesshttp.MapKeyResolver
	users  map[string]string // pubKey by uuid
	byKey  map[string]string // uuid by pubKey
	videos []*video
}

func newDoloresService(s *Server) *doloresService {
	return &doloresService{
		s:     s,
		keys:  sessionlesshttp.NewMapKeyResolver(),
		users: make(map[string]string),
		byKey: make(map[string]string),
	}
}

func (d *doloresService) routes(mux *http.ServeMux, prefix string) {
	d.s.signed(mux, "PUT "+prefix+"user/create", sigbase.Register, d.keys, d.create)
	d.s.signed(mux, "GET "+prefix+"user/{uuid}", sigbase.Identity, d.keys, d.get)
	d.s.signed(mux, "PUT "+prefix+"user/{uuid}/short-form/video", sigbase.Identity, d.keys, d.putVideo)
	d.s.signed(mux, "GET "+prefix+"user/{uuid}/feed", sigbase.List, d.keys, d.feed)
	d.s.signed(mux, "PUT "+prefix+"user/{uuid}/video/{videoUUID}/tags", sigbase.Tag, d.keys, d.tag)
	d.s.deletion(mux, "DELETE "+prefix+"user/{uuid}/delete", d.keys, d.delete)
}

func (d *doloresService) create(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	id, ok := d.byKey[vr.PubKey]
	if !ok {
		id = uuid.NewString()
		d.byKey[vr.PubKey] = id
		d.users[id] = vr.PubKey
		d.keys.Set(id, vr.PubKey)
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"uuid": id})
}

func (d *doloresService) get(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"uuid": vr.UUID})
}

func (d *doloresService) putVideo(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	f, _, err := r.FormFile("video")
	if err != nil {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "no video attached"})
		return
	}
	defer f.Close()
	size, err := io.Copy(io.Discard, f)
	if err != nil {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "failed to read video"})
		return
	}

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	d.videos = append(d.videos, &video{
		UUID:  uuid.NewString(),
		Title: r.FormValue("title"),
		Owner: vr.UUID,
		Tags:  []string{},
		Size:  size,
	})
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (d *doloresService) feed(w http.ResponseWriter, r *http.Request) {
	tags := strings.Fields(r.URL.Query().Get("tags"))

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	videos := []*video{}
	for _, v := range d.videos {
		if matchesAny(v.Tags, tags) {
			videos = append(videos, v)
		}
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

func (d *doloresService) tag(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	videoUUID := r.PathValue("videoUUID")

	var tags []string
	raw, _ := vr.Body["tags"].([]any)
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	for _, v := range d.videos {
		if v.UUID == videoUUID && v.Owner == vr.UUID {
			v.Tags = append([]string{}, tags...)
			sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": false})
}

func (d *doloresService) delete(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	delete(d.byKey, d.users[vr.UUID])
	delete(d.users, vr.UUID)
	d.keys.Delete(vr.UUID)

	kept := d.videos[:0]
	for _, v := range d.videos {
		if v.Owner != vr.UUID {
			kept = append(kept, v)
		}
	}
	d.videos = kept
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VideoUUIDs lists the uuids of videos owned by owner.
func (s *Server) VideoUUIDs(owner string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, v := range s.dolores.videos {
		if v.Owner == owner {
			ids = append(ids, v.UUID)
		}
	}
	return ids
}

func matchesAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
