package constants

// Counter names. Each ledger owns one sequence; values are never reused.
const (
	SeqCertificateID = "certificate_id"
	SeqLotID         = "lot_id"
	SeqIssuanceID    = "issuance_id"
	SeqListingCount  = "listing_count" // informational tally, not an identity
)
