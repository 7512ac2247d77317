package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/yosssi/gohtml"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/form"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("").Funcs(template.FuncMap{
		"createdDate": createdDate,
		"pathEscape":  url.PathEscape,
	}).ParseFS(templateFS, "templates/*.html"),
)

type statusOption struct {
	Value string
	Label string
}

type modalData struct {
	Kind   string
	Title  string
	Submit string
	Values form.Values
	Errors form.Errors
}

type pageData struct {
	View     page.View
	Modal    *modalData
	HasData  bool
	Refresh  bool
	Query    string
	Statuses []statusOption
}

func newPageData(view page.View, hasData bool) pageData {
	data := pageData{
		View:     view,
		Modal:    modalFor(view.Modal),
		HasData:  hasData,
		Refresh:  !hasData && view.ListErr == nil,
		Query:    filterQuery(view),
		Statuses: statusOptions(),
	}
	return data
}

func modalFor(m page.Modal) *modalData {
	switch m := m.(type) {
	case page.CreateModal:
		return &modalData{Kind: "create", Title: "Add domain", Submit: "Create", Values: m.Values, Errors: m.Errors}
	case page.EditModal:
		return &modalData{Kind: "edit", Title: "Edit " + m.Record.Domain, Submit: "Save", Values: m.Values, Errors: m.Errors}
	case page.DeleteModal:
		return &modalData{Kind: "delete"}
	default:
		return nil
	}
}

func filterQuery(view page.View) string {
	if encoded := view.Filter.Values().Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

func statusOptions() []statusOption {
	options := make([]statusOption, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		options = append(options, statusOption{Value: strconv.Itoa(int(s)), Label: s.String()})
	}
	return options
}

func createdDate(d domain.Domain) string {
	if t, ok := d.CreatedAt(); ok {
		return t.Local().Format("2006-01-02 15:04")
	}
	return d.CreatedDate
}

type renderer struct {
	pretty bool
}

func (rd renderer) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", data); err != nil {
		log.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	out := buf.Bytes()
	if rd.pretty {
		out = gohtml.FormatBytes(out)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
