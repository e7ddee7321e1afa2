package resolver

import (
	"context"
	"fmt"

	"github.com/gnome-horoscope/gnome-bridge/internal/audit"
)

// Auditor wraps a ResolveFunc and records the key and outcome in the request
// log entry.
func Auditor(resolve ResolveFunc) ResolveFunc {
	return func(ctx context.Context, key ContentKey) (ResolvedContent, error) {
		content, err := resolve(ctx, key)

		entry := audit.Log(ctx)
		entry.ContentKey = string(key)
		if err != nil {
			entry.Error = fmt.Sprintf("resolve failure: %v", err)
		} else {
			entry.ContentSource = content.Source
			entry.Cached = content.Cached
		}

		return content, err
	}
}
