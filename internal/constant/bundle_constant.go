package constant

const (
	// CopySuffix is appended to the title of duplicated bundles and items.
	CopySuffix = " (copy)"

	// MergedDefaultTitle is used when a merge request carries no title.
	MergedDefaultTitle = "Merged bundle"

	// BundleChangedTopic is the pub/sub topic every store mutation publishes
	// to; the live query layer subscribes to it.
	BundleChangedTopic = "BUNDLE_CHANGED"
)
