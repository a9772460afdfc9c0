package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/RamPrasathM-2005/College-Integration-sub001/model"
	"github.com/RamPrasathM-2005/College-Integration-sub001/services/storage"
	"github.com/xuri/excelize/v2"
)

const (
	// Row 1: course title, row 2: staff block labels, row 3: column
	// headers. Student rows start below that and are append-only.
	rosterLabelRow     = 2
	rosterHeaderRow    = 3
	rosterDataStartRow = 4
	// Each staff block is a (Reg No, Name) column pair
	rosterBlockWidth = 2
)

// RosterService maintains the per-bucket roster workbook: one sheet per
// elective course, one column pair per assigned staff, students listed
// in arrival order. Writes to a given workbook are serialized with a
// per-file mutex so two concurrent selections cannot race on "find the
// first empty row" and overwrite each other.
type RosterService struct {
	dir   string
	store *storage.ObjectStore // optional archive of the workbook after each write

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRosterService creates a roster service writing under dir
func NewRosterService(dir string, store *storage.ObjectStore) *RosterService {
	return &RosterService{
		dir:   dir,
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// AppendStudent records one allocated student on the course sheet of
// the bucket's workbook, under the column block labelled with the
// staff's id. The list is append-only: the writer scans forward from
// the fixed data start row and takes the first empty cell.
func (r *RosterService) AppendStudent(bucket *model.ElectiveBucket, course *model.Course, staffID uint, regNo, name string) error {
	path := r.workbookPath(bucket)

	lock := r.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	file, err := r.openOrCreate(path)
	if err != nil {
		return err
	}
	defer file.Close()

	sheet := course.Code
	if !r.sheetExists(file, sheet) {
		if _, err := file.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := file.SetCellValue(sheet, "A1", course.Title); err != nil {
			return err
		}
	}

	startCol, err := r.findStaffBlock(file, sheet, staffID)
	if err != nil {
		return err
	}

	row := rosterDataStartRow
	for {
		cell, err := excelize.CoordinatesToCellName(startCol, row)
		if err != nil {
			return err
		}
		value, err := file.GetCellValue(sheet, cell)
		if err != nil {
			return err
		}
		if value == "" {
			break
		}
		row++
	}

	regCell, _ := excelize.CoordinatesToCellName(startCol, row)
	nameCell, _ := excelize.CoordinatesToCellName(startCol+1, row)
	if err := file.SetCellValue(sheet, regCell, regNo); err != nil {
		return err
	}
	if err := file.SetCellValue(sheet, nameCell, name); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save roster workbook: %w", err)
	}

	r.archive(path)
	return nil
}

// WorkbookPath exposes the on-disk location of a bucket's roster
func (r *RosterService) WorkbookPath(bucket *model.ElectiveBucket) string {
	return r.workbookPath(bucket)
}

func (r *RosterService) workbookPath(bucket *model.ElectiveBucket) string {
	return filepath.Join(r.dir, fmt.Sprintf("roster-sem%d-bucket%d.xlsx", bucket.SemesterID, bucket.Number))
}

func (r *RosterService) lockFor(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks[path] == nil {
		r.locks[path] = &sync.Mutex{}
	}
	return r.locks[path]
}

func (r *RosterService) openOrCreate(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err == nil {
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open roster workbook: %w", err)
		}
		return file, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return excelize.NewFile(), nil
}

func (r *RosterService) sheetExists(file *excelize.File, sheet string) bool {
	for _, name := range file.GetSheetList() {
		if name == sheet {
			return true
		}
	}
	return false
}

// findStaffBlock locates the column block whose label row matches
// "staffId:<id>", creating a new block after the last one when absent.
func (r *RosterService) findStaffBlock(file *excelize.File, sheet string, staffID uint) (int, error) {
	label := fmt.Sprintf("staffId:%d", staffID)

	col := 1
	for {
		cell, err := excelize.CoordinatesToCellName(col, rosterLabelRow)
		if err != nil {
			return 0, err
		}
		value, err := file.GetCellValue(sheet, cell)
		if err != nil {
			return 0, err
		}
		if value == label {
			return col, nil
		}
		if value == "" {
			break
		}
		col += rosterBlockWidth
	}

	// New block: label plus the fixed sub-headers
	labelCell, _ := excelize.CoordinatesToCellName(col, rosterLabelRow)
	if err := file.SetCellValue(sheet, labelCell, label); err != nil {
		return 0, err
	}
	regHeader, _ := excelize.CoordinatesToCellName(col, rosterHeaderRow)
	nameHeader, _ := excelize.CoordinatesToCellName(col+1, rosterHeaderRow)
	if err := file.SetCellValue(sheet, regHeader, "Reg No"); err != nil {
		return 0, err
	}
	if err := file.SetCellValue(sheet, nameHeader, "Name"); err != nil {
		return 0, err
	}
	return col, nil
}

func (r *RosterService) archive(path string) {
	if r.store == nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("roster: failed to read workbook for archival: %v", err)
		return
	}
	key := fmt.Sprintf("rosters/%s", filepath.Base(path))
	if _, err := r.store.UploadBytes(context.Background(), key, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
		log.Printf("roster: failed to archive workbook: %v", err)
	}
}
