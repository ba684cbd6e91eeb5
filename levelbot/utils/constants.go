package utils

const (
	// Embed colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF

	// Pagination
	EntriesPerPage = 10
)
