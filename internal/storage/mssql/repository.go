package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"

	"stanfordwho-parser/internal/checksum"
	"stanfordwho-parser/internal/observability"
	"stanfordwho-parser/internal/scraper"
)

const insertPerson = `
	INSERT INTO TblDirectoryPeople
		([Session_UID], [PageIndex], [Name], [Email], [Affiliation], [Department], [CheckSum], [DT])
	VALUES
		(@SessionUID, @PageIndex, @Name, @Email, @Affiliation, @Department, @CheckSum, @DT);
`

type pendingRow struct {
	pageIndex int
	rec       scraper.PersonRecord
}

// Repository: зеркальный приёмник записей в SQL Server. Строки копятся до
// Flush и пишутся пачкой (одна транзакция на страницу при txPerPage).
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	txPerPage      bool
	sessionID      string
	hasher         *checksum.Generator
	logger         *observability.Logger
	pending        []pendingRow
	mirrored       int
	now            func() time.Time
}

func NewRepository(dsn string, commandTimeout time.Duration, txPerPage bool, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewRepositoryFromDB(db, commandTimeout, txPerPage, logger), nil
}

func NewRepositoryFromDB(db *sql.DB, commandTimeout time.Duration, txPerPage bool, logger *observability.Logger) *Repository {
	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		txPerPage:      txPerPage,
		sessionID:      uuid.NewString(),
		hasher:         checksum.NewGenerator(),
		logger:         logger,
		now:            time.Now,
	}
}

func (r *Repository) SessionID() string {
	return r.sessionID
}

func (r *Repository) Write(_ context.Context, pageIndex int, rec *scraper.PersonRecord) error {
	r.pending = append(r.pending, pendingRow{pageIndex: pageIndex, rec: *rec})
	return nil
}

// Flush вставляет накопленные строки.
func (r *Repository) Flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var err error
	if r.txPerPage {
		err = r.flushTx(ctx)
	} else {
		err = r.flushEach(ctx)
	}
	if err != nil {
		return err
	}

	r.logger.Debug("Rows mirrored to database", "rows", len(r.pending), "session", r.sessionID)
	r.pending = r.pending[:0]
	return nil
}

func (r *Repository) flushTx(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertPerson)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	for _, row := range r.pending {
		if _, err := stmt.ExecContext(ctx, r.args(row)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *Repository) flushEach(ctx context.Context) error {
	for i, row := range r.pending {
		if _, err := r.db.ExecContext(ctx, insertPerson, r.args(row)...); err != nil {
			// уже вставленные не повторяем
			r.pending = r.pending[i:]
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	return nil
}

func (r *Repository) args(row pendingRow) []interface{} {
	rec := row.rec
	return []interface{}{
		sql.Named("SessionUID", r.sessionID),
		sql.Named("PageIndex", row.pageIndex),
		sql.Named("Name", rec.Name),
		sql.Named("Email", rec.Email),
		sql.Named("Affiliation", rec.Affiliation),
		sql.Named("Department", rec.Department),
		sql.Named("CheckSum", r.hasher.GenerateRecordHash(rec.Name, rec.Email, rec.Affiliation, rec.Department)),
		sql.Named("DT", r.now().UTC()),
	}
}

// CountBySession: сколько строк этой сессии уже в базе.
func (r *Repository) CountBySession(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM TblDirectoryPeople WHERE Session_UID = @SessionUID`,
		sql.Named("SessionUID", r.sessionID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

// Mirrored: сколько строк сессии оказалось в базе на момент Close.
func (r *Repository) Mirrored() int {
	return r.mirrored
}

// Close сверяет число строк сессии в базе и закрывает соединение.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}

	if n, err := r.CountBySession(context.Background()); err != nil {
		r.logger.Warn("Failed to count mirrored rows", "session", r.sessionID, "error", err.Error())
	} else {
		r.mirrored = n
		r.logger.Info("Mirror session closed", "session", r.sessionID, "rows", n)
	}
	return r.db.Close()
}
