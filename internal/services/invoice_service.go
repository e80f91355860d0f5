// internal/services/invoice_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/database"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
	"github.com/shopbook/shopbook-backend/internal/utils"
)

type InvoiceService struct {
	db      *gorm.DB
	archive Archive
	books   config.BooksConfig
}

type InvoiceLine struct {
	Description string `json:"description" validate:"required,notblank,max=255"`
	Quantity    int64  `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0,lte=1000000000000"`
	Discount    int64  `json:"discount" validate:"gte=0,lte=1000000000000000000"`
}

// CreateInvoiceRequest takes free lines, recorded sales, or both. Sale lines
// come first, in the order given.
type CreateInvoiceRequest struct {
	CustomerName string        `json:"customer_name" validate:"max=255"`
	IssuedAt     *time.Time    `json:"issued_at,omitempty"`
	Discount     int64         `json:"discount" validate:"gte=0,lte=1000000000000000000"`
	Note         string        `json:"note" validate:"max=2000"`
	SaleIDs      []uuid.UUID   `json:"sale_ids,omitempty" validate:"max=100"`
	Items        []InvoiceLine `json:"items,omitempty" validate:"max=100,dive"`
}

type InvoiceFilter struct {
	utils.PaginationParams
	utils.DateRange
}

func NewInvoiceService(db *gorm.DB, archive Archive, books config.BooksConfig) *InvoiceService {
	return &InvoiceService{db: db, archive: archive, books: books}
}

// ComputeInvoiceTotals fills line totals, subtotal and total. Neither a line
// nor the invoice goes below zero.
func ComputeInvoiceTotals(inv *models.Invoice) error {
	inv.Subtotal = 0
	for i := range inv.Items {
		item := &inv.Items[i]
		total, err := ledger.SaleTotal(item.Quantity, item.UnitPrice, item.Discount)
		if err != nil {
			return fmt.Errorf("invoice line %d: %w", i+1, err)
		}
		item.LineTotal = max(total, 0)
		if inv.Subtotal > math.MaxInt64-item.LineTotal {
			return ledger.ErrAmountOverflow
		}
		inv.Subtotal += item.LineTotal
	}
	inv.Total = max(inv.Subtotal-inv.Discount, 0)
	return nil
}

func invoiceKey(ownerID uuid.UUID, number string, issuedAt time.Time) string {
	return fmt.Sprintf("invoices/%s/%s/%s.html", ownerID, issuedAt.Format("2006-01"), number)
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, ownerID uuid.UUID, req *CreateInvoiceRequest) (*models.Invoice, error) {
	if len(req.SaleIDs) == 0 && len(req.Items) == 0 {
		return nil, ErrEmptyInvoice
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	issuedAt := time.Now()
	if req.IssuedAt != nil {
		issuedAt = *req.IssuedAt
	}
	number, err := utils.GenerateInvoiceNumber(issuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice := &models.Invoice{
		Number:       number,
		CustomerName: strings.TrimSpace(req.CustomerName),
		IssuedAt:     issuedAt,
		Discount:     req.Discount,
		Note:         req.Note,
	}
	invoice.ID = uuid.New()
	invoice.OwnerID = ownerID

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if len(req.SaleIDs) > 0 {
			var sales []models.Sale
			if err := owned(tx, ownerID).Where("id IN ?", req.SaleIDs).Find(&sales).Error; err != nil {
				return fmt.Errorf("failed to load sales: %w", err)
			}
			byID := make(map[uuid.UUID]models.Sale, len(sales))
			for _, sale := range sales {
				byID[sale.ID] = sale
			}

			for _, id := range req.SaleIDs {
				sale, ok := byID[id]
				if !ok {
					return fmt.Errorf("%w: %s", ErrSaleNotFound, id)
				}
				saleID := sale.ID
				invoice.Items = append(invoice.Items, models.InvoiceItem{
					SaleID:      &saleID,
					Description: sale.ProductName,
					Quantity:    sale.Quantity,
					UnitPrice:   sale.SalePrice,
					Discount:    sale.Discount,
				})
				if invoice.CustomerName == "" {
					invoice.CustomerName = sale.CustomerName
				}
			}
		}

		for _, line := range req.Items {
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				Description: strings.TrimSpace(line.Description),
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Discount:    line.Discount,
			})
		}
		for i := range invoice.Items {
			invoice.Items[i].ID = uuid.New()
			invoice.Items[i].InvoiceID = invoice.ID
			invoice.Items[i].Position = i
		}
		if err := ComputeInvoiceTotals(invoice); err != nil {
			return err
		}

		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.archive != nil && s.archive.Enabled() {
		s.archiveInvoice(ctx, invoice)
	}
	return invoice, nil
}

// archiveInvoice uploads the rendering. A failed upload leaves the invoice
// without an archive key; it can always be rendered again.
func (s *InvoiceService) archiveInvoice(ctx context.Context, invoice *models.Invoice) {
	var buf bytes.Buffer
	if err := RenderInvoiceHTML(&buf, invoice, s.books); err != nil {
		logrus.WithError(err).WithField("invoice", invoice.Number).Error("Failed to render invoice for archive")
		return
	}

	key := invoiceKey(invoice.OwnerID, invoice.Number, invoice.IssuedAt)
	if err := s.archive.Put(ctx, key, buf.Bytes(), "text/html; charset=utf-8"); err != nil {
		logrus.WithError(err).WithField("invoice", invoice.Number).Error("Failed to archive invoice")
		return
	}

	if err := s.db.WithContext(ctx).Model(invoice).Update("archive_key", key).Error; err != nil {
		logrus.WithError(err).WithField("invoice", invoice.Number).Error("Failed to store archive key")
		return
	}
	invoice.ArchiveKey = key
}

func (s *InvoiceService) GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := owned(s.db.WithContext(ctx), ownerID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &invoice, nil
}

// ArchiveURL returns a short-lived link to the archived rendering.
func (s *InvoiceService) ArchiveURL(ctx context.Context, ownerID, id uuid.UUID) (string, error) {
	invoice, err := s.GetInvoice(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	if invoice.ArchiveKey == "" || s.archive == nil || !s.archive.Enabled() {
		return "", nil
	}
	return s.archive.PresignedURL(invoice.ArchiveKey, 15*time.Minute)
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, ownerID, id uuid.UUID) error {
	invoice, err := s.GetInvoice(ctx, ownerID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		if err := tx.Delete(invoice).Error; err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if invoice.ArchiveKey != "" && s.archive != nil {
		if err := s.archive.Delete(ctx, invoice.ArchiveKey); err != nil {
			logrus.WithError(err).WithField("invoice", invoice.Number).Warn("Failed to remove archived invoice")
		}
	}
	return nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter InvoiceFilter) ([]models.Invoice, int64, error) {
	query := owned(s.db.WithContext(ctx).Model(&models.Invoice{}), ownerID)
	query = utils.ApplyDateRange(query, "issued_at", filter.DateRange)

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	allowedSortFields := []string{"issued_at", "created_at", "total", "number"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	return invoices, total, nil
}

func (s *InvoiceService) Books() config.BooksConfig {
	return s.books
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Invoice.Number}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 6px; text-align: left; }
td.num, th.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.BusinessName}}</h1>
<p>Invoice <strong>{{.Invoice.Number}}</strong><br>
Date: {{.Invoice.IssuedAt.Format "2006-01-02"}}{{if .Invoice.CustomerName}}<br>
Customer: {{.Invoice.CustomerName}}{{end}}</p>
<table>
<thead><tr><th>#</th><th>Description</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Discount</th><th class="num">Amount</th></tr></thead>
<tbody>
{{range .Lines}}<tr><td>{{.Index}}</td><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Discount}}</td><td class="num">{{.LineTotal}}</td></tr>
{{end}}</tbody>
</table>
<p>Subtotal: {{.Subtotal}} {{.Currency}}<br>
Discount: {{.Discount}} {{.Currency}}<br>
<strong>Total: {{.Total}} {{.Currency}}</strong></p>
{{if .Invoice.Note}}<p>{{.Invoice.Note}}</p>{{end}}
</body>
</html>
`))

type invoiceLineView struct {
	Index       int
	Description string
	Quantity    int64
	UnitPrice   string
	Discount    string
	LineTotal   string
}

// RenderInvoiceHTML writes a printable page for the invoice.
func RenderInvoiceHTML(w io.Writer, inv *models.Invoice, books config.BooksConfig) error {
	amount := func(v int64) string { return utils.FormatAmount(v, books.CurrencyScale) }

	lines := make([]invoiceLineView, 0, len(inv.Items))
	for i, item := range inv.Items {
		lines = append(lines, invoiceLineView{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   amount(item.UnitPrice),
			Discount:    amount(item.Discount),
			LineTotal:   amount(item.LineTotal),
		})
	}

	return invoiceTemplate.Execute(w, map[string]interface{}{
		"BusinessName": books.BusinessName,
		"Currency":     books.CurrencyCode,
		"Invoice":      inv,
		"Lines":        lines,
		"Subtotal":     amount(inv.Subtotal),
		"Discount":     amount(inv.Discount),
		"Total":        amount(inv.Total),
	})
}
