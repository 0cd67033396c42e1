package instance

import (
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/wirebazaar/wirebazaar-backend/pkg/env"
)

var (
	once     sync.Once
	cachedID string
)

// GetID returns the process identifier used to tag published change events.
// WIREBAZAAR_WORKER_ID or WORKER_ID wins when set; otherwise hostname plus a random suffix, fixed for the process lifetime.
func GetID() string {
	once.Do(func() {
		if id := env.First("", "WIREBAZAAR_WORKER_ID", "WORKER_ID"); id != "" {
			cachedID = id
			return
		}
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "wirebazaar"
		}
		cachedID = host + "-" + uuid.NewString()[:8]
	})
	return cachedID
}
