package sqldb

import "time"

const defaultConnectTimeout = 10 * time.Second
