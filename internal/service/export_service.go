package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ignatzorin/ruralfund-backend/internal/models"
)

const investmentsSheet = "Investments"

var investmentExportHeaders = []string{
	"ID", "Дата", "Проект", "Местоположение", "Инвестор", "Email", "Сумма", "Статус",
	"Банк", "IFSC", "Владелец счёта", "Одобрил", "Дата одобрения", "Причина отказа",
}

// InvestmentLister отдаёт все заявки для выгрузки.
type InvestmentLister interface {
	ListAll(ctx context.Context) ([]models.InvestmentView, error)
}

// ExportService формирует xlsx-выгрузки для администратора.
type ExportService struct {
	investments InvestmentLister
}

func NewExportService(investments InvestmentLister) *ExportService {
	return &ExportService{investments: investments}
}

// WriteInvestments пишет книгу со всеми заявками в w. Номера счетов и KYC в выгрузку не попадают.
func (s *ExportService) WriteInvestments(ctx context.Context, w io.Writer) error {
	views, err := s.investments.ListAll(ctx)
	if err != nil {
		return err
	}

	f, err := BuildInvestmentWorkbook(views)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export service: запись книги %w", err)
	}
	return nil
}

// BuildInvestmentWorkbook заполняет лист Investments: заголовок и по строке на заявку.
func BuildInvestmentWorkbook(views []models.InvestmentView) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(investmentsSheet)
	if err != nil {
		return nil, fmt.Errorf("export service: лист %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range investmentExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(investmentsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("export service: заголовок %w", err)
		}
	}

	for i, v := range views {
		row := i + 2
		values := []interface{}{
			v.ID.String(),
			v.CreatedAt.Format("02.01.2006 15:04"),
			v.Project.Title,
			v.Project.Location,
			v.Investor.Name,
			v.Investor.Email,
			v.Amount,
			string(v.Status),
			v.BankName,
			v.IFSCCode,
			v.AccountHolderName,
			derefString(v.AdminApprovedBy),
			formatOptionalTime(v.AdminApprovedAt),
			derefString(v.RejectionReason),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(investmentsSheet, cell, value); err != nil {
				return nil, fmt.Errorf("export service: строка %d %w", row, err)
			}
		}
	}

	return f, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}
