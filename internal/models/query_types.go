package models

// QueryType names a catalog or invoice lookup. It labels query errors and logs.
type QueryType string

const (
	QueryTypeCustomerByPhone     QueryType = "customer_by_phone"
	QueryTypeCustomerByEmail     QueryType = "customer_by_email"
	QueryTypeAlbumsByArtist      QueryType = "albums_by_artist"
	QueryTypeTracksByArtist      QueryType = "tracks_by_artist"
	QueryTypeGenreIDs            QueryType = "genre_ids"
	QueryTypeSongsByGenre        QueryType = "songs_by_genre"
	QueryTypeTracksByTitle       QueryType = "tracks_by_title"
	QueryTypeInvoicesByDate      QueryType = "invoices_by_date"
	QueryTypeInvoicesByUnitPrice QueryType = "invoices_by_unit_price"
	QueryTypeEmployeeForInvoice  QueryType = "employee_for_invoice"
)
