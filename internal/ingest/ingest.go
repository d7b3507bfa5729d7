// Package ingest reads the raw recruitment spreadsheet into RawPosting
// rows. Both .xlsx workbooks and .csv exports are accepted; header names may
// be the original Chinese column names or their English equivalents.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"jobsight/internal/posting"
)

// column keys, in canonical order.
const (
	colTitle       = "title"
	colCompany     = "company"
	colCity        = "city"
	colRegion      = "region"
	colSalaryMin   = "salary_min"
	colSalaryMax   = "salary_max"
	colExperience  = "experience"
	colDegree      = "degree"
	colAIKeywords  = "ai_keywords"
	colDescription = "description"
	colPublishDate = "publish_date"
)

// headerAliases maps accepted header spellings onto canonical column keys.
var headerAliases = map[string]string{
	"title": colTitle, "招聘岗位": colTitle,
	"company": colCompany, "企业名称": colCompany,
	"city": colCity, "工作城市": colCity,
	"region": colRegion, "工作区域": colRegion,
	"salary_min": colSalaryMin, "最低月薪": colSalaryMin,
	"salary_max": colSalaryMax, "最高月薪": colSalaryMax,
	"experience": colExperience, "要求经验": colExperience,
	"degree": colDegree, "学历要求": colDegree,
	"ai_keywords": colAIKeywords, "人工智能关键词": colAIKeywords,
	"description": colDescription, "职位描述": colDescription,
	"publish_date": colPublishDate, "招聘发布日期": colPublishDate,
}

// requiredColumns in reporting order.
var requiredColumns = []string{
	colTitle, colCompany, colCity, colRegion,
	colSalaryMin, colSalaryMax, colExperience, colDegree,
	colAIKeywords, colDescription, colPublishDate,
}

// ReadPostings loads every data row from path. A missing file or missing
// required column is fatal; no per-row errors exist at this stage.
func ReadPostings(path string) ([]posting.RawPosting, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ingest: %s: empty file, no header row", path)
	}

	idx, err := resolveHeader(rows[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []string, key string) string {
		i := idx[key]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	postings := make([]posting.RawPosting, 0, len(rows)-1)
	for i, row := range rows[1:] {
		postings = append(postings, posting.RawPosting{
			Index:       i,
			Title:       cell(row, colTitle),
			Company:     cell(row, colCompany),
			City:        cell(row, colCity),
			Region:      cell(row, colRegion),
			SalaryMin:   cell(row, colSalaryMin),
			SalaryMax:   cell(row, colSalaryMax),
			Experience:  cell(row, colExperience),
			Degree:      cell(row, colDegree),
			AIKeywords:  cell(row, colAIKeywords),
			Description: cell(row, colDescription),
			PublishDate: cell(row, colPublishDate),
		})
	}
	return postings, nil
}

// resolveHeader maps canonical column keys to cell indexes, collecting every
// missing required column into one error.
func resolveHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		h = strings.TrimSpace(strings.ToLower(h))
		if key, ok := headerAliases[h]; ok {
			if _, dup := idx[key]; !dup {
				idx[key] = i
			}
		}
	}

	var missing []string
	for _, key := range requiredColumns {
		if _, ok := idx[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ingest: missing required column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	// Strip a UTF-8 BOM the way Excel exports often carry one.
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
