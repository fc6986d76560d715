// Package ui holds the inventory screen state and the HTML frontend that
// drives it against the products API.
package ui

import (
	"context"
	"fmt"
	"strconv"

	"product-inventory/internal/products"
	"product-inventory/internal/products/client"
)

const (
	msgCreateFailed = "Failed to add product"
	msgUpdateFailed = "Failed to update product"
)

type API interface {
	List(ctx context.Context, page, limit int) (client.Page, error)
	Create(ctx context.Context, in products.Input) (products.Product, error)
	Update(ctx context.Context, id int64, in products.Input) (products.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Form buffers raw field text the way the user typed it.
type Form struct {
	Article  string
	Name     string
	Price    string
	Quantity string
}

// Input converts the buffer for the API. An unparseable price becomes 0 and
// an unparseable quantity is sent as absent, both left for the server to
// reject.
func (f Form) Input() products.Input {
	price, _ := strconv.Atoi(f.Price)
	in := products.Input{
		Article: f.Article,
		Name:    f.Name,
		Price:   price,
	}
	if quantity, err := strconv.Atoi(f.Quantity); err == nil {
		in.Quantity = &quantity
	}
	return in
}

func formFrom(p products.Product) Form {
	return Form{
		Article:  p.Article,
		Name:     p.Name,
		Price:    strconv.Itoa(p.Price),
		Quantity: strconv.Itoa(p.Quantity),
	}
}

// Edit is the single row being edited, separate from the canonical row.
type Edit struct {
	ID   int64
	Form Form
}

type Model struct {
	api      API
	pageSize int

	Page       int
	Rows       []products.Product
	TotalPages int
	Editing    *Edit
	Create     Form
	Error      string
}

func NewModel(api API, pageSize int) *Model {
	return &Model{
		api:      api,
		pageSize: pageSize,
		Page:     1,
	}
}

// SetPage fetches page and switches to it. On failure the model keeps
// showing the previous page and its rows.
func (m *Model) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return m.load(ctx, page)
}

// Refresh refetches the current page. Rows are left untouched on failure.
func (m *Model) Refresh(ctx context.Context) error {
	return m.load(ctx, m.Page)
}

func (m *Model) load(ctx context.Context, page int) error {
	result, err := m.api.List(ctx, page, m.pageSize)
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", page, err)
	}

	m.Page = page
	m.Rows = result.Data
	m.TotalPages = totalPages(result.Total, m.pageSize)
	return nil
}

// BeginEdit copies a displayed row into the edit buffer. Any previous edit
// is discarded.
func (m *Model) BeginEdit(id int64) bool {
	for _, row := range m.Rows {
		if row.ID == id {
			m.Editing = &Edit{ID: id, Form: formFrom(row)}
			m.Error = ""
			return true
		}
	}
	return false
}

// CommitEdit sends the buffered edit. On failure the edit stays open and the
// server's message is shown.
func (m *Model) CommitEdit(ctx context.Context, form Form) error {
	if m.Editing == nil {
		return nil
	}
	m.Editing.Form = form

	if _, err := m.api.Update(ctx, m.Editing.ID, form.Input()); err != nil {
		m.Error = client.Message(err, msgUpdateFailed)
		return nil
	}

	m.Editing = nil
	m.Error = ""
	return m.Refresh(ctx)
}

func (m *Model) CancelEdit() {
	m.Editing = nil
	m.Error = ""
}

// SubmitCreate sends the creation form and stays on the current page.
func (m *Model) SubmitCreate(ctx context.Context, form Form) error {
	m.Error = ""
	m.Create = form

	if _, err := m.api.Create(ctx, form.Input()); err != nil {
		m.Error = client.Message(err, msgCreateFailed)
		return nil
	}

	m.Create = Form{}
	return m.Refresh(ctx)
}

// Delete removes a row once confirm agrees and refetches the current page.
// The page number is not adjusted, so removing the last row of the last page
// can leave an empty page on screen.
func (m *Model) Delete(ctx context.Context, id int64, confirm func() bool) error {
	if !confirm() {
		return nil
	}

	if err := m.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return m.Refresh(ctx)
}

// IsEditing reports whether the row with id is the edit target.
func (m *Model) IsEditing(id int64) bool {
	return m.Editing != nil && m.Editing.ID == id
}

func totalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}
