package testserver

import (
	"net/http"

	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/google/uuid"
)

type bdoEntry struct {
	content any
	public  bool
}

type bdoUser struct {
	uuid       string
	pubKey     string
	bdos       map[string]*bdoEntry // by hash
	bases      any
	spellbooks []map[string]any
}

type bdoService struct {
	s     *Server
	keys  *sessionlesshttp.MapKeyResolver
	users map[string]*bdoUser
	// owner uuid by pubKey+hash
	owners map[string]string
}

func newBDOService(s *Server) *bdoService {
	return &bdoService{
		s:      s,
		keys:   sessionlesshttp.NewMapKeyResolver(),
		users:  make(map[string]*bdoUser),
		owners: make(map[string]string),
	}
}

func (b *bdoService) routes(mux *http.ServeMux, prefix string) {
	b.s.signed(mux, "PUT "+prefix+"user/create", sigbase.Create, b.keys, b.create)
	b.s.signed(mux, "PUT "+prefix+"user/{uuid}/bdo", sigbase.Update, b.keys, b.update)
	b.s.signed(mux, "GET "+prefix+"user/{uuid}/bdo", sigbase.Read, b.keys, b.get)
	b.s.signed(mux, "GET "+prefix+"user/{uuid}/bases", sigbase.Read, b.keys, b.getBases)
	b.s.signed(mux, "PUT "+prefix+"user/{uuid}/bases", sigbase.Update, b.keys, b.putBases)
	b.s.signed(mux, "GET "+prefix+"user/{uuid}/spellbooks", sigbase.Read, b.keys, b.getSpellbooks)
	b.s.signed(mux, "PUT "+prefix+"user/{uuid}/spellbooks", sigbase.Update, b.keys, b.putSpellbook)
	b.s.signed(mux, "GET "+prefix+"user/{uuid}/teleport", sigbase.Read, b.keys, b.teleport)
	b.s.deletion(mux, "DELETE "+prefix+"user/{uuid}/delete", b.keys, b.delete)
}

func (b *bdoService) create(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	hash, _ := vr.Body["hash"].(string)
	public, _ := vr.Body["public"].(bool)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	id, ok := b.owners[vr.PubKey+hash]
	if !ok {
		id = uuid.NewString()
		b.owners[vr.PubKey+hash] = id
		b.users[id] = &bdoUser{uuid: id, pubKey: vr.PubKey, bdos: make(map[string]*bdoEntry)}
		b.keys.Set(id, vr.PubKey)
	}
	user := b.users[id]
	entry := &bdoEntry{content: vr.Body["bdo"], public: public}
	user.bdos[hash] = entry

	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"uuid": id, "bdo": entry.content})
}

func (b *bdoService) update(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	hash, _ := vr.Body["hash"].(string)
	public, _ := vr.Body["pub"].(bool)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		notFound(w)
		return
	}
	entry := &bdoEntry{content: vr.Body["bdo"], public: public}
	user.bdos[hash] = entry
	b.owners[user.pubKey+hash] = user.uuid

	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"uuid": user.uuid, "bdo": entry.content})
}

func (b *bdoService) get(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	q := r.URL.Query()
	hash := q.Get("hash")

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	owner, ok := b.users[vr.UUID]
	if pubKey := q.Get("pubKey"); pubKey != "" && pubKey != vr.PubKey {
		id, found := b.owners[pubKey+hash]
		if !found {
			notFound(w)
			return
		}
		owner = b.users[id]
		if entry := owner.bdos[hash]; entry == nil || !entry.public {
			notFound(w)
			return
		}
	} else if !ok {
		notFound(w)
		return
	}

	entry, ok := owner.bdos[hash]
	if !ok {
		notFound(w)
		return
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"uuid": owner.uuid, "bdo": entry.content})
}

func (b *bdoService) getBases(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		notFound(w)
		return
	}
	bases := user.bases
	if bases == nil {
		bases = map[string]any{}
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"bases": bases})
}

func (b *bdoService) putBases(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		notFound(w)
		return
	}
	user.bases = vr.Body["bases"]
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"bases": user.bases})
}

func (b *bdoService) getSpellbooks(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		notFound(w)
		return
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"spellbooks": spellbooksOf(user)})
}

func (b *bdoService) putSpellbook(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	spellbook, _ := vr.Body["spellbook"].(map[string]any)
	name, _ := spellbook["spellbookName"].(string)
	if name == "" {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "spellbook needs a spellbookName"})
		return
	}

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		notFound(w)
		return
	}
	replaced := false
	for i, existing := range user.spellbooks {
		if existing["spellbookName"] == name {
			user.spellbooks[i] = spellbook
			replaced = true
		}
	}
	if !replaced {
		user.spellbooks = append(user.spellbooks, spellbook)
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"spellbooks": spellbooksOf(user)})
}

func spellbooksOf(user *bdoUser) []map[string]any {
	if user.spellbooks == nil {
		return []map[string]any{}
	}
	return user.spellbooks
}

// teleport echoes the target instead of fetching it.
func (b *bdoService) teleport(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"url": target, "teleported": true})
}

func (b *bdoService) delete(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	user, ok := b.users[vr.UUID]
	if !ok {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": false})
		return
	}
	for hash := range user.bdos {
		delete(b.owners, user.pubKey+hash)
	}
	delete(b.users, vr.UUID)
	b.keys.Delete(vr.UUID)
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
