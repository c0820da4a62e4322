package constant

const (
	DEFAULT_PAGE_SIZE = 10
	MAX_PAGE_SIZE     = 100

	// Cap for the thread endpoints. Top-level "load more" requests above this
	// are rejected, replies are always fetched with REPLY_PAGE_SIZE.
	MAX_THREAD_LIMIT = 50
	REPLY_PAGE_SIZE  = 5

	LIST_CACHE_TTL_SECONDS = 30
)
