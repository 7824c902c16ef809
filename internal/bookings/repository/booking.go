package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	bookingerrors "bookingsheet/internal/bookings/errors"
	"bookingsheet/internal/bookings/sheet"
	"bookingsheet/pkg/config"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/model"
)

const storeFileMode = 0o644

type BookingRepository interface {
	// Append adds booking as the last row of the store and returns its row
	// number, counting bookings from 1. A booking with no non-null value
	// adds no row and yields 0; its keys still join the header.
	Append(ctx context.Context, booking *model.Booking) (int, error)
	List(ctx context.Context) ([]*model.Booking, error)
	Ready() error
}

// sheetBookingRepository keeps every booking in one xlsx file. Each Append
// re-reads and rewrites the whole file. The mutex serializes appends within
// this process only; other processes writing the same file can still lose
// rows.
type sheetBookingRepository struct {
	mu        sync.Mutex
	path      string
	dir       string
	sheetName string
	log       *logger.Logger
}

func NewSheetBookingRepository(cfg *config.Config, log *logger.Logger) BookingRepository {
	return &sheetBookingRepository{
		path:      cfg.StoreFile,
		dir:       cfg.StoreDir(),
		sheetName: cfg.SheetName,
		log:       log,
	}
}

func (r *sheetBookingRepository) Append(ctx context.Context, booking *model.Booking) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	table, err := r.load()
	if err != nil {
		return 0, err
	}

	if n := table.ColumnsWith(booking); n > sheet.MaxColumns {
		return 0, fmt.Errorf("%w: appending would need %d columns", bookingerrors.ErrTooManyColumns, n)
	}
	added := table.Append(booking)

	if err := r.save(table); err != nil {
		return 0, err
	}

	r.log.Debug("Booking store rewritten",
		"path", r.path,
		"rows", table.Len(),
		"columns", len(table.Columns()),
		"row_added", added,
	)
	if !added {
		return 0, nil
	}
	return table.Len(), nil
}

func (r *sheetBookingRepository) List(ctx context.Context) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := r.load()
	if err != nil {
		return nil, err
	}
	return table.Rows(), nil
}

func (r *sheetBookingRepository) Ready() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", bookingerrors.ErrStoreUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", bookingerrors.ErrStoreUnavailable, r.dir)
	}
	return nil
}

// load reads the store, treating a missing file as an empty store.
func (r *sheetBookingRepository) load() (*sheet.Table, error) {
	file, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sheet.NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open booking store: %w", err)
	}
	defer file.Close()

	table, err := sheet.Read(file)
	if err != nil {
		return nil, fmt.Errorf("load booking store %s: %w", r.path, err)
	}
	return table, nil
}

// save writes the table to a temporary file next to the store and renames
// it over the store path.
func (r *sheetBookingRepository) save(table *sheet.Table) (err error) {
	tmp, err := os.CreateTemp(r.dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary store file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = sheet.Write(tmp, table, r.sheetName); err != nil {
		return fmt.Errorf("encode booking store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temporary store file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary store file: %w", err)
	}
	if err = os.Chmod(tmpName, storeFileMode); err != nil {
		return fmt.Errorf("chmod temporary store file: %w", err)
	}
	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace booking store: %w", err)
	}
	return nil
}
