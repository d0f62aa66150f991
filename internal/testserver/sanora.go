package testserver

import (
	"encoding/json"
	"io"
	"net/http"

	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/google/uuid"
)

type product struct {
	UUID        string   `json:"uuid"`
	ProductID   string   `json:"productId"`
	Author      string   `json:"author"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Artifacts   []string `json:"artifacts,omitempty"`
	Image       string   `json:"image,omitempty"`
}

type sanoraUser struct {
	UUID   string           `json:"uuid"`
	Orders []map[string]any `json:"orders,omitempty"`

	pubKey   string
	products map[string]*product // by title
}

type sanoraService struct {
	s     *Server
	keys  *sessionlesshttp.MapKeyResolver
	users map[string]*sanoraUser
	byKey map[string]string
}

func newSanoraService(s *Server) *sanoraService {
	return &sanoraService{
		s:     s,
		keys:  sessionlesshttp.NewMapKeyResolver(),
		users: make(map[string]*sanoraUser),
		byKey: make(map[string]string),
	}
}

func (sn *sanoraService) routes(mux *http.ServeMux, prefix string) {
	sn.s.signed(mux, "PUT "+prefix+"user/create", sigbase.Register, sn.keys, sn.create)
	sn.s.signed(mux, "GET "+prefix+"user/{uuid}", sigbase.Identity, sn.keys, sn.get)
	sn.s.signed(mux, "PUT "+prefix+"user/{uuid}/product/{title}", sigbase.Product, sn.keys, sn.putProduct)
	sn.s.signed(mux, "PUT "+prefix+"user/{uuid}/product/{title}/artifact", sigbase.Artifact, sn.keys, sn.putArtifact)
	sn.s.signed(mux, "PUT "+prefix+"user/{uuid}/product/{title}/image", sigbase.Artifact, sn.keys, sn.putImage)
	sn.s.signed(mux, "PUT "+prefix+"user/{uuid}/orders", sigbase.Identity, sn.keys, sn.putOrder)
	sn.s.signed(mux, "GET "+prefix+"user/{uuid}/orders/{productId}", sigbase.Identity, sn.keys, sn.getOrders)
	sn.s.deletion(mux, "DELETE "+prefix+"user/{uuid}/delete", sn.keys, sn.delete)

	mux.HandleFunc("GET "+prefix+"products/{uuid}", sn.getProducts)
	mux.HandleFunc("GET "+prefix+"products/{uuid}/{title}", sn.getProduct)
}

func (sn *sanoraService) create(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	id, ok := sn.byKey[vr.PubKey]
	if !ok {
		id = uuid.NewString()
		sn.byKey[vr.PubKey] = id
		sn.users[id] = &sanoraUser{UUID: id, pubKey: vr.PubKey, products: make(map[string]*product)}
		sn.keys.Set(id, vr.PubKey)
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, sn.users[id])
}

func (sn *sanoraService) get(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	sessionlesshttp.WriteJSON(w, http.StatusOK, sn.users[vr.UUID])
}

func (sn *sanoraService) putProduct(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	title := r.PathValue("title")
	description, _ := vr.Body["description"].(string)
	var price int64
	if n, ok := vr.Body["price"].(json.Number); ok {
		price, _ = n.Int64()
	}

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	user := sn.users[vr.UUID]
	p, ok := user.products[title]
	if !ok {
		p = &product{UUID: uuid.NewString(), Author: user.UUID, Title: title}
		p.ProductID = p.UUID
		user.products[title] = p
	}
	p.Description = description
	p.Price = price
	sessionlesshttp.WriteJSON(w, http.StatusOK, p)
}

func (sn *sanoraService) putArtifact(w http.ResponseWriter, r *http.Request) {
	sn.attach(w, r, "artifact")
}

func (sn *sanoraService) putImage(w http.ResponseWriter, r *http.Request) {
	sn.attach(w, r, "image")
}

func (sn *sanoraService) attach(w http.ResponseWriter, r *http.Request, field string) {
	vr := verified(r)
	title := r.PathValue("title")

	f, hdr, err := r.FormFile(field)
	if err != nil {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "no " + field + " attached"})
		return
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "failed to read " + field})
		return
	}

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	p, ok := sn.users[vr.UUID].products[title]
	if !ok {
		notFound(w)
		return
	}
	if field == "image" {
		p.Image = hdr.Filename
	} else {
		p.Artifacts = append(p.Artifacts, hdr.Filename)
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (sn *sanoraService) getProduct(w http.ResponseWriter, r *http.Request) {
	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	user, ok := sn.users[r.PathValue("uuid")]
	if !ok {
		notFound(w)
		return
	}
	p, ok := user.products[r.PathValue("title")]
	if !ok {
		notFound(w)
		return
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, p)
}

func (sn *sanoraService) getProducts(w http.ResponseWriter, r *http.Request) {
	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	user, ok := sn.users[r.PathValue("uuid")]
	if !ok {
		notFound(w)
		return
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, user.products)
}

func (sn *sanoraService) putOrder(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	order, _ := vr.Body["order"].(map[string]any)
	if order == nil {
		sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]string{"error": "no order"})
		return
	}

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	user := sn.users[vr.UUID]
	user.Orders = append(user.Orders, order)
	sessionlesshttp.WriteJSON(w, http.StatusOK, user)
}

func (sn *sanoraService) getOrders(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)
	productID := r.PathValue("productId")

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	orders := []map[string]any{}
	for _, o := range sn.users[vr.UUID].Orders {
		if o["productId"] == productID {
			orders = append(orders, o)
		}
	}
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (sn *sanoraService) delete(w http.ResponseWriter, r *http.Request) {
	vr := verified(r)

	sn.s.mu.Lock()
	defer sn.s.mu.Unlock()

	if user, ok := sn.users[vr.UUID]; ok {
		delete(sn.byKey, user.pubKey)
	}
	delete(sn.users, vr.UUID)
	sn.keys.Delete(vr.UUID)
	sessionlesshttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
