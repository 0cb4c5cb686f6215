package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/service"
)

// MaxImportFileSize - предельный размер загружаемого файла с вопросами
const MaxImportFileSize = 5 << 20

const questionsSheet = "Questions"

// Колонки файла: текст, до 6 вариантов, номер правильного варианта (с 1), пояснение, сложность
var questionColumns = []string{
	"text", "option_1", "option_2", "option_3", "option_4", "option_5", "option_6",
	"correct_option", "explanation", "difficulty",
}

// ExportQuestions GET /api/topics/:id/questions/export?format=csv|xlsx
func (h *TopicHandler) ExportQuestions(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		badRequest(c, "format must be csv or xlsx")
		return
	}

	topicID := c.GetUint(ContextKeyTopicID)
	questions, err := h.topicService.ListQuestions(c.Request.Context(), topicID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("topic_%d_questions", topicID)
	switch format {
	case "xlsx":
		h.exportXLSX(c, questions, filename)
	default:
		h.exportCSV(c, questions, filename)
	}
}

// exportCSV экспортирует вопросы в CSV с правильным экранированием спецсимволов
func (h *TopicHandler) exportCSV(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.log.WithError(err).Warn("Failed to write CSV BOM")
		return
	}

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write(questionColumns); err != nil {
		h.log.WithError(err).Warn("Failed to write CSV header")
		return
	}
	for i := range questions {
		row := questionRow(&questions[i])
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		if err := writer.Write(cells); err != nil {
			h.log.WithError(err).Warn("Failed to write CSV row")
			return
		}
	}
}

// exportXLSX экспортирует вопросы в Excel с использованием StreamWriter
func (h *TopicHandler) exportXLSX(c *gin.Context, questions []entity.Question, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", questionsSheet); err != nil {
		respondError(c, h.log, fmt.Errorf("rename sheet: %w", err))
		return
	}

	sw, err := f.NewStreamWriter(questionsSheet)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("create stream writer: %w", err))
		return
	}

	header := make([]interface{}, len(questionColumns))
	for i, col := range questionColumns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		respondError(c, h.log, fmt.Errorf("write header: %w", err))
		return
	}

	for i := range questions {
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // строка 1 - заголовки
		if err := sw.SetRow(cell, questionRow(&questions[i])); err != nil {
			respondError(c, h.log, fmt.Errorf("write row %d: %w", i+2, err))
			return
		}
	}

	if err := sw.Flush(); err != nil {
		respondError(c, h.log, fmt.Errorf("flush: %w", err))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Warn("Failed to write XLSX to response")
	}
}

// ImportQuestions POST /api/topics/:id/questions/import (multipart, поле file)
func (h *TopicHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > MaxImportFileSize {
		badRequest(c, fmt.Sprintf("file is larger than %d bytes", MaxImportFileSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "cannot open uploaded file")
		return
	}
	defer file.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx":
		rows, err = readXLSXRows(file)
	default:
		badRequest(c, "file must be .csv or .xlsx")
		return
	}
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	inputs, err := parseQuestionRows(rows)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	h.saveQuestions(c, inputs)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	// Убираем BOM, который пишет экспорт
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// parseQuestionRows разбирает строки файла. Первая строка с заголовком text пропускается,
// пустые строки игнорируются. correct_option в файле нумеруется с 1.
func parseQuestionRows(rows [][]string) ([]service.QuestionInput, error) {
	inputs := make([]service.QuestionInput, 0, len(rows))
	for i, row := range rows {
		lineNo := i + 1
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), questionColumns[0]) {
			continue
		}

		cells := make([]string, len(questionColumns))
		for j := range cells {
			if j < len(row) {
				cells[j] = unsanitizeFromExcel(strings.TrimSpace(row[j]))
			}
		}
		if strings.Join(cells, "") == "" {
			continue
		}

		// Варианты идут подряд: пропуск сдвинул бы номер правильного ответа
		var options []string
		gap := false
		for _, opt := range cells[1:7] {
			if opt == "" {
				gap = true
				continue
			}
			if gap {
				return nil, fmt.Errorf("row %d: options must be filled without gaps", lineNo)
			}
			options = append(options, opt)
		}

		correct, err := strconv.Atoi(cells[7])
		if err != nil || correct < 1 {
			return nil, fmt.Errorf("row %d: correct_option must be a positive number", lineNo)
		}
		if correct > len(options) {
			return nil, fmt.Errorf("row %d: correct_option %d points to an empty option", lineNo, correct)
		}

		difficulty := 0
		if cells[9] != "" {
			if difficulty, err = strconv.Atoi(cells[9]); err != nil {
				return nil, fmt.Errorf("row %d: difficulty must be a number", lineNo)
			}
		}

		inputs = append(inputs, service.QuestionInput{
			Text:          cells[0],
			Options:       options,
			CorrectOption: correct - 1,
			Explanation:   cells[8],
			Difficulty:    difficulty,
		})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("file contains no questions")
	}
	return inputs, nil
}

// questionRow раскладывает вопрос по колонкам файла
func questionRow(q *entity.Question) []interface{} {
	row := make([]interface{}, 0, len(questionColumns))
	row = append(row, sanitizeForExcel(q.Text))
	for i := 0; i < 6; i++ {
		opt := ""
		if i < len(q.Options) {
			opt = sanitizeForExcel(q.Options[i])
		}
		row = append(row, opt)
	}
	row = append(row, q.CorrectOption+1, sanitizeForExcel(q.Explanation), q.Difficulty)
	return row
}

// sanitizeForExcel защищает от CSV/Formula Injection
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// unsanitizeFromExcel снимает апостроф, добавленный sanitizeForExcel при экспорте
func unsanitizeFromExcel(s string) string {
	if len(s) > 1 && s[0] == '\'' && strings.ContainsRune("=+-@\t\r", rune(s[1])) {
		return s[1:]
	}
	return s
}
