package config

const (
	// MaxPackTitleLength is the maximum length for pack titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and keep
	// dashboard cards readable.
	MaxPackTitleLength = 255

	// MaxSectionTitleLength is the maximum length for a section heading.
	MaxSectionTitleLength = 255

	// MaxSectionsPerPack caps the number of sections in one pack.
	// Governor templates have at most a couple of dozen sections.
	MaxSectionsPerPack = 100

	// MaxSectionContentLength bounds the free-text content of one section (1 MiB).
	MaxSectionContentLength = 1 << 20

	// MaxCommentLength is the maximum length for approval comments.
	MaxCommentLength = 10000

	// DefaultTimelineLimit is the page size for the timeline feed when none is given.
	DefaultTimelineLimit = 50

	// MaxTimelineLimit is the largest page size accepted for the timeline feed.
	MaxTimelineLimit = 200
)
