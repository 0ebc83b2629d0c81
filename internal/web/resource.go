package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/vbonduro/poseidon/internal/auth"
	"github.com/vbonduro/poseidon/internal/service"
	"github.com/vbonduro/poseidon/internal/validation"
)

// crudService is what a resource needs from an entity service.
type crudService[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, actor string, v *T) (*T, error)
	Update(ctx context.Context, actor string, id int64, v *T) error
	Delete(ctx context.Context, id int64) error
}

// resource serves the list/add/validate/update/delete pages of one entity.
type resource[T any] struct {
	s       *Server
	entity  entity[T]
	service crudService[T]
	columns []field
}

func newResource[T any](s *Server, e entity[T], svc crudService[T]) *resource[T] {
	rs := &resource[T]{s: s, entity: e, service: svc}
	for _, f := range e.fields {
		if f.Listed {
			rs.columns = append(rs.columns, f)
		}
	}
	return rs
}

// register mounts the entity routes under prefix behind gate.
func (rs *resource[T]) register(r *mux.Router, prefix string, gate mux.MiddlewareFunc) {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.Use(gate)
	sub.HandleFunc("/list", rs.handleList).Methods(http.MethodGet)
	sub.HandleFunc("/add", rs.handleAdd).Methods(http.MethodGet)
	sub.HandleFunc("/validate", rs.handleValidate).Methods(http.MethodPost)
	sub.HandleFunc("/update/{id:[0-9]+}", rs.handleEdit).Methods(http.MethodGet)
	sub.HandleFunc("/update/{id:[0-9]+}", rs.handleUpdate).Methods(http.MethodPost)
	sub.HandleFunc("/delete/{id:[0-9]+}", rs.handleDelete).Methods(http.MethodGet)
}

func (rs *resource[T]) listPath() string {
	return "/" + rs.entity.name + "/list"
}

func (rs *resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := rs.service.List(r.Context())
	if err != nil {
		rs.s.serverError(w, r, err)
		return
	}

	rows := make([]url.Values, 0, len(items))
	for _, it := range items {
		rows = append(rows, rs.entity.toForm(it))
	}

	rs.s.renderPage(w, r, http.StatusOK, map[string]any{
		"Title":     rs.entity.title + " List",
		"ActiveNav": rs.entity.name,
		"Entity":    rs.entity.name,
		"Columns":   rs.columns,
		"Rows":      rows,
	}, "base.html", "pages/list.html")
}

func (rs *resource[T]) handleAdd(w http.ResponseWriter, r *http.Request) {
	rs.renderForm(w, r, 0, url.Values{}, validation.Errors{})
}

func (rs *resource[T]) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		rs.s.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	v, verrs := rs.entity.parse(r.PostForm)
	if len(verrs) > 0 {
		rs.renderForm(w, r, 0, r.PostForm, rs.withRuleErrors(v, verrs))
		return
	}

	if _, err := rs.service.Create(r.Context(), actor(r), v); err != nil {
		if ferrs, ok := validation.AsErrors(err); ok {
			rs.renderForm(w, r, 0, r.PostForm, ferrs)
			return
		}
		rs.s.serverError(w, r, err)
		return
	}

	rs.s.metrics.RecordWrite(rs.entity.name, "create")
	http.Redirect(w, r, rs.listPath(), http.StatusFound)
}

func (rs *resource[T]) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := rs.pathID(w, r)
	if !ok {
		return
	}

	v, err := rs.service.Get(r.Context(), id)
	if err != nil {
		rs.serviceError(w, r, err)
		return
	}

	rs.renderForm(w, r, id, rs.entity.toForm(v), validation.Errors{})
}

func (rs *resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := rs.pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		rs.s.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	v, verrs := rs.entity.parse(r.PostForm)
	if len(verrs) > 0 {
		if _, err := rs.service.Get(r.Context(), id); err != nil {
			rs.serviceError(w, r, err)
			return
		}
		rs.renderForm(w, r, id, r.PostForm, rs.withRuleErrors(v, verrs))
		return
	}

	if err := rs.service.Update(r.Context(), actor(r), id, v); err != nil {
		if ferrs, ok := validation.AsErrors(err); ok {
			rs.renderForm(w, r, id, r.PostForm, ferrs)
			return
		}
		rs.serviceError(w, r, err)
		return
	}

	rs.s.metrics.RecordWrite(rs.entity.name, "update")
	http.Redirect(w, r, rs.listPath(), http.StatusFound)
}

func (rs *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := rs.pathID(w, r)
	if !ok {
		return
	}

	if err := rs.service.Delete(r.Context(), id); err != nil {
		rs.serviceError(w, r, err)
		return
	}

	rs.s.metrics.RecordWrite(rs.entity.name, "delete")
	http.Redirect(w, r, rs.listPath(), http.StatusFound)
}

// renderForm shows the add form when id is zero and the update form otherwise.
// Password inputs are never echoed back.
func (rs *resource[T]) renderForm(w http.ResponseWriter, r *http.Request, id int64, form url.Values, errs validation.Errors) {
	mode, action := "add", "/"+rs.entity.name+"/validate"
	if id != 0 {
		mode, action = "update", fmt.Sprintf("/%s/update/%d", rs.entity.name, id)
	}

	shown := url.Values{}
	for _, f := range rs.entity.fields {
		if f.Input != "password" {
			shown.Set(f.Name, form.Get(f.Name))
		}
	}

	rs.s.renderPage(w, r, http.StatusOK, map[string]any{
		"Title":     rs.entity.title,
		"ActiveNav": rs.entity.name,
		"Entity":    rs.entity.name,
		"Mode":      mode,
		"Action":    action,
		"Fields":    rs.entity.fields,
		"Form":      shown,
		"Errors":    errs,
	}, "base.html", "pages/form.html")
}

// withRuleErrors adds validation rule failures to conversion errors so the
// form shows every problem at once. Conversion messages win per field.
func (rs *resource[T]) withRuleErrors(v *T, verrs validation.Errors) validation.Errors {
	if ferrs, ok := validation.AsErrors(rs.s.validator.Struct(v)); ok {
		verrs.Merge(ferrs)
	}
	return verrs
}

func (rs *resource[T]) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		rs.s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("invalid %s id: %s", rs.entity.name, raw))
		return 0, false
	}
	return id, true
}

func (rs *resource[T]) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		rs.s.renderError(w, r, http.StatusNotFound, err.Error())
		return
	}
	rs.s.serverError(w, r, err)
}

func actor(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p.Username
	}
	return ""
}
