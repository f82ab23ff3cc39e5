// Package chinook runs the read-only catalog, customer and invoice lookups
// against the Chinook schema. Every user-supplied value is a bound parameter.
package chinook

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"music-store-agent/internal/common/database"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/observability"
	"music-store-agent/internal/models"
)

// SongsByGenreLimit caps the number of artists returned for a genre.
const SongsByGenreLimit = 8

var invoiceColumns = []string{
	`"Invoice"."InvoiceId"`,
	`"Invoice"."CustomerId"`,
	`"Invoice"."InvoiceDate"`,
	`"Invoice"."BillingAddress"`,
	`"Invoice"."BillingCity"`,
	`"Invoice"."BillingState"`,
	`"Invoice"."BillingCountry"`,
	`"Invoice"."BillingPostalCode"`,
	`"Invoice"."Total"`,
}

var trackColumns = []string{
	`"TrackId"`,
	`"Name"`,
	`"AlbumId"`,
	`"MediaTypeId"`,
	`"GenreId"`,
	`"Composer"`,
	`"Milliseconds"`,
	`"Bytes"`,
	`"UnitPrice"`,
}

type Store struct {
	db       *sql.DB
	sq       squirrel.StatementBuilderType
	recorder *observability.Observability
}

func NewStore(client *database.SQLClient, recorder *observability.Observability) *Store {
	return &Store{
		db:       client.DB,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(client.Placeholder()),
		recorder: recorder,
	}
}

// CustomerIDsByPhone returns at most two matching customer IDs, lowest first.
// A second ID means the phone number is shared.
func (s *Store) CustomerIDsByPhone(ctx context.Context, phone string) ([]int64, error) {
	return s.customerIDs(ctx, models.QueryTypeCustomerByPhone, `"Phone"`, phone)
}

// CustomerIDsByEmail returns at most two matching customer IDs, lowest first.
func (s *Store) CustomerIDsByEmail(ctx context.Context, email string) ([]int64, error) {
	return s.customerIDs(ctx, models.QueryTypeCustomerByEmail, `"Email"`, email)
}

func (s *Store) customerIDs(ctx context.Context, qt models.QueryType, column, value string) ([]int64, error) {
	query := s.sq.Select(`"CustomerId"`).
		From(`"Customer"`).
		Where(squirrel.Eq{column: value}).
		OrderBy(`"CustomerId"`).
		Limit(2)

	var ids []int64
	err := s.query(ctx, qt, query, func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

func (s *Store) AlbumsByArtist(ctx context.Context, artist string) ([]models.Album, error) {
	query := s.sq.Select(`"Album"."Title"`, `"Artist"."Name"`).
		From(`"Album"`).
		Join(`"Artist" ON "Album"."ArtistId" = "Artist"."ArtistId"`).
		Where(squirrel.Like{`"Artist"."Name"`: contains(artist)})

	albums := []models.Album{}
	err := s.query(ctx, models.QueryTypeAlbumsByArtist, query, func(rows *sql.Rows) error {
		var a models.Album
		if err := rows.Scan(&a.Title, &a.Name); err != nil {
			return err
		}
		albums = append(albums, a)
		return nil
	})
	return albums, err
}

func (s *Store) TracksByArtist(ctx context.Context, artist string) ([]models.ArtistTrack, error) {
	query := s.sq.Select(`"Track"."Name" AS "SongName"`, `"Artist"."Name" AS "ArtistName"`).
		From(`"Album"`).
		LeftJoin(`"Artist" ON "Album"."ArtistId" = "Artist"."ArtistId"`).
		LeftJoin(`"Track" ON "Track"."AlbumId" = "Album"."AlbumId"`).
		Where(squirrel.Like{`"Artist"."Name"`: contains(artist)})

	tracks := []models.ArtistTrack{}
	err := s.query(ctx, models.QueryTypeTracksByArtist, query, func(rows *sql.Rows) error {
		var song, name sql.NullString
		if err := rows.Scan(&song, &name); err != nil {
			return err
		}
		tracks = append(tracks, models.ArtistTrack{SongName: stringPtr(song), ArtistName: stringPtr(name)})
		return nil
	})
	return tracks, err
}

// GenreIDs resolves every genre whose name contains genre.
func (s *Store) GenreIDs(ctx context.Context, genre string) ([]int64, error) {
	query := s.sq.Select(`"GenreId"`).
		From(`"Genre"`).
		Where(squirrel.Like{`"Name"`: contains(genre)})

	var ids []int64
	err := s.query(ctx, models.QueryTypeGenreIDs, query, func(rows *sql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// SongsByGenreIDs returns one song per distinct artist among tracks in the
// given genres, at most SongsByGenreLimit rows. genreIDs must not be empty.
func (s *Store) SongsByGenreIDs(ctx context.Context, genreIDs []int64) ([]models.GenreSong, error) {
	if len(genreIDs) == 0 {
		return nil, fmt.Errorf("genre id set is empty")
	}

	query := s.sq.Select(`MIN("Track"."Name") AS "SongName"`, `"Artist"."Name" AS "ArtistName"`).
		From(`"Track"`).
		LeftJoin(`"Album" ON "Track"."AlbumId" = "Album"."AlbumId"`).
		LeftJoin(`"Artist" ON "Album"."ArtistId" = "Artist"."ArtistId"`).
		Where(squirrel.Eq{`"Track"."GenreId"`: genreIDs}).
		GroupBy(`"Artist"."Name"`).
		OrderBy(`"Artist"."Name"`).
		Limit(SongsByGenreLimit)

	songs := []models.GenreSong{}
	err := s.query(ctx, models.QueryTypeSongsByGenre, query, func(rows *sql.Rows) error {
		var song, artist sql.NullString
		if err := rows.Scan(&song, &artist); err != nil {
			return err
		}
		songs = append(songs, models.GenreSong{Song: stringPtr(song), Artist: stringPtr(artist)})
		return nil
	})
	return songs, err
}

// TracksByTitle returns every track whose name contains title.
func (s *Store) TracksByTitle(ctx context.Context, title string) ([]models.Track, error) {
	query := s.sq.Select(trackColumns...).
		From(`"Track"`).
		Where(squirrel.Like{`"Name"`: contains(title)})

	tracks := []models.Track{}
	err := s.query(ctx, models.QueryTypeTracksByTitle, query, func(rows *sql.Rows) error {
		var (
			t                      models.Track
			albumID, genreID, size sql.NullInt64
			composer               sql.NullString
		)
		if err := rows.Scan(&t.TrackID, &t.Name, &albumID, &t.MediaTypeID, &genreID,
			&composer, &t.Milliseconds, &size, &t.UnitPrice); err != nil {
			return err
		}
		t.AlbumID = int64Ptr(albumID)
		t.GenreID = int64Ptr(genreID)
		t.Composer = stringPtr(composer)
		t.Bytes = int64Ptr(size)
		tracks = append(tracks, t)
		return nil
	})
	return tracks, err
}

// InvoicesByCustomer returns the customer's invoices, newest first.
func (s *Store) InvoicesByCustomer(ctx context.Context, customerID int64) ([]models.Invoice, error) {
	query := s.sq.Select(invoiceColumns...).
		From(`"Invoice"`).
		Where(squirrel.Eq{`"Invoice"."CustomerId"`: customerID}).
		OrderBy(`"Invoice"."InvoiceDate" DESC`)

	invoices := []models.Invoice{}
	err := s.query(ctx, models.QueryTypeInvoicesByDate, query, func(rows *sql.Rows) error {
		inv, err := scanInvoice(rows)
		if err != nil {
			return err
		}
		invoices = append(invoices, inv)
		return nil
	})
	return invoices, err
}

// InvoicesByUnitPrice returns one row per invoice line, highest unit price first.
func (s *Store) InvoicesByUnitPrice(ctx context.Context, customerID int64) ([]models.InvoiceLinePrice, error) {
	columns := append(append([]string{}, invoiceColumns...), `"InvoiceLine"."UnitPrice"`)
	query := s.sq.Select(columns...).
		From(`"Invoice"`).
		Join(`"InvoiceLine" ON "Invoice"."InvoiceId" = "InvoiceLine"."InvoiceId"`).
		Where(squirrel.Eq{`"Invoice"."CustomerId"`: customerID}).
		OrderBy(`"InvoiceLine"."UnitPrice" DESC`)

	lines := []models.InvoiceLinePrice{}
	err := s.query(ctx, models.QueryTypeInvoicesByUnitPrice, query, func(rows *sql.Rows) error {
		var unitPrice float64
		inv, err := scanInvoice(rows, &unitPrice)
		if err != nil {
			return err
		}
		lines = append(lines, models.InvoiceLinePrice{Invoice: inv, UnitPrice: unitPrice})
		return nil
	})
	return lines, err
}

// EmployeeForInvoice returns the support representative of the invoice's
// customer, or nil when the invoice does not belong to customerID.
func (s *Store) EmployeeForInvoice(ctx context.Context, invoiceID, customerID int64) (*models.SupportEmployee, error) {
	query := s.sq.Select(`"Employee"."FirstName"`, `"Employee"."Title"`, `"Employee"."Email"`).
		From(`"Employee"`).
		Join(`"Customer" ON "Customer"."SupportRepId" = "Employee"."EmployeeId"`).
		Join(`"Invoice" ON "Invoice"."CustomerId" = "Customer"."CustomerId"`).
		Where(squirrel.Eq{`"Invoice"."InvoiceId"`: invoiceID}).
		Where(squirrel.Eq{`"Invoice"."CustomerId"`: customerID})

	var employee *models.SupportEmployee
	err := s.query(ctx, models.QueryTypeEmployeeForInvoice, query, func(rows *sql.Rows) error {
		if employee != nil {
			return nil
		}
		var title, email sql.NullString
		e := models.SupportEmployee{}
		if err := rows.Scan(&e.FirstName, &title, &email); err != nil {
			return err
		}
		e.Title = stringPtr(title)
		e.Email = stringPtr(email)
		employee = &e
		return nil
	})
	return employee, err
}

// Ping is used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) query(ctx context.Context, qt models.QueryType, builder squirrel.SelectBuilder, scan func(*sql.Rows) error) (err error) {
	sqlText, args, err := builder.ToSql()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError(string(qt), fmt.Errorf("building select query: %w", err))
	}

	start := time.Now()
	defer func() {
		s.recorder.RecordUpstreamCall(ctx, "sql", string(qt), time.Since(start), err)
	}()

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return queryError(ctx, qt, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err = scan(rows); err != nil {
			return queryError(ctx, qt, fmt.Errorf("scan row: %w", err))
		}
	}
	if err = rows.Err(); err != nil {
		return queryError(ctx, qt, err)
	}
	return nil
}

func queryError(ctx context.Context, qt models.QueryType, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(string(qt), err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return apperrors.NewQueryExecutionFailedError(string(qt), err)
}

// scanInvoice scans the invoice columns followed by any extra destinations.
func scanInvoice(rows *sql.Rows, extra ...interface{}) (models.Invoice, error) {
	var (
		inv                                       models.Invoice
		date                                      sql.NullString
		address, city, state, country, postalCode sql.NullString
	)
	dest := []interface{}{&inv.InvoiceID, &inv.CustomerID, &date, &address, &city, &state, &country, &postalCode, &inv.Total}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return models.Invoice{}, err
	}

	inv.InvoiceDate = date.String
	inv.BillingAddress = stringPtr(address)
	inv.BillingCity = stringPtr(city)
	inv.BillingState = stringPtr(state)
	inv.BillingCountry = stringPtr(country)
	inv.BillingPostalCode = stringPtr(postalCode)
	return inv, nil
}

func contains(term string) string {
	return "%" + term + "%"
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
