package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/models"
	"github.com/ngprojetos/inscricao-eventos/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names
const (
	SheetRegistrations = "Inscrições"
	SheetDetailed      = "Cadastros completos"
)

var registrationHeader = []string{
	"ID", "Nome", "Email", "Telefone", "Telefone (E.164)", "Confirmado", "Data de inscrição",
}

var detailedHeader = []string{
	"ID", "Email de inscrição", "CPF", "Sexo", "Participação", "Instituição", "Cidade",
	"Área de atuação", "Setor", "Cargo", "Telefone institucional", "Email institucional",
	"Confirmação", "Aceite LGPD", "Aceite comunicados", "Data",
}

var (
	registrationWidths = []float64{8, 30, 32, 18, 18, 12, 20}
	detailedWidths     = []float64{8, 32, 16, 12, 14, 28, 22, 22, 22, 22, 20, 30, 14, 12, 18, 20}
)

// Workbook builds the spreadsheet of the registrations listing. The detailed
// sheet is only added when detailed is non-nil.
func Workbook(list *models.RegistrationList, detailed []models.DetailedRegistrationRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRegistrations); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	var rows [][]interface{}
	if list != nil {
		for _, r := range list.Registrations {
			e164, _ := utils.PhoneE164(r.Phone)
			rows = append(rows, []interface{}{
				r.ID, r.Name, r.Email, utils.FormatPhoneForDisplay(r.Phone), e164, yesNo(r.Confirmed), formatTime(r.Timestamp.Time),
			})
		}
	}
	if err := writeSheet(f, SheetRegistrations, registrationHeader, registrationWidths, rows, headerStyle); err != nil {
		return nil, err
	}

	if detailed != nil {
		if _, err := f.NewSheet(SheetDetailed); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		rows = rows[:0]
		for _, d := range detailed {
			rows = append(rows, []interface{}{
				d.ID, d.RegistrationEmail, utils.MaskCPF(d.CPF), d.Sexo, d.Participacao, d.InstituicaoNome, d.Cidade,
				d.AreaAtuacao, d.Setor, d.Cargo, utils.FormatPhoneForDisplay(d.InstitTel), d.InstitEmail,
				d.ConfirmacaoDetalhada, yesNo(d.AceiteLGPD), yesNo(d.AceiteComunicados), formatTime(d.Timestamp.Time),
			})
		}
		if err := writeSheet(f, SheetDetailed, detailedHeader, detailedWidths, rows, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, widths []float64, rows [][]interface{}, headerStyle int) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04:05")
}
