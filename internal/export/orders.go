// Package export renders admin order listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/distributor-orders/internal/model"
)

const (
	OrdersSheet = "Orders"
	ItemsSheet  = "Items"

	// ContentType is the media type of the workbook written by WriteOrders.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	orderHeader = []interface{}{
		"Order ID", "Placed", "Status", "Order Type", "Customer", "Phone", "Address", "City", "Items", "Total", "Owner",
	}
	itemHeader = []interface{}{
		"Order ID", "Product Code", "Title", "Price", "Quantity", "Unit",
	}
)

// WriteOrders writes one row per order to the Orders sheet and one row
// per line item to the Items sheet, then streams the workbook to w.
func WriteOrders(w io.Writer, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := writeHeader(f, OrdersSheet, orderHeader, bold); err != nil {
		return err
	}
	if err := writeHeader(f, ItemsSheet, itemHeader, bold); err != nil {
		return err
	}

	itemRow := 2
	for i, o := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			o.ID,
			o.CreatedAt.UTC().Format(time.RFC3339),
			string(o.Status),
			string(o.Type),
			o.Customer.Name,
			o.Customer.Phone,
			o.Customer.Address,
			o.Customer.City,
			len(o.Items),
			o.Total.InexactFloat64(),
			o.UserID,
		}
		if err := f.SetSheetRow(OrdersSheet, cell, &row); err != nil {
			return fmt.Errorf("order %s: %w", o.ID, err)
		}
		for _, it := range o.Items {
			cell, _ := excelize.CoordinatesToCellName(1, itemRow)
			line := []interface{}{o.ID, it.ProductCode, it.Title, it.Price, it.Quantity, it.Unit}
			if err := f.SetSheetRow(ItemsSheet, cell, &line); err != nil {
				return fmt.Errorf("order %s items: %w", o.ID, err)
			}
			itemRow++
		}
	}

	if err := f.SetColWidth(OrdersSheet, "A", "K", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(ItemsSheet, "A", "F", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return f.SetRowStyle(sheet, 1, 1, style)
}
