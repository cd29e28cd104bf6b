package config

import "os"

func IsDebug() bool {
	return os.Getenv("VIZCHAT_DEBUG") == "1"
}
