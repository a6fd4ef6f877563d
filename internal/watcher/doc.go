// Package watcher keeps a project's environment link current.
//
// It watches Poetry's virtualenvs directory with fsnotify. Environments being
// created, removed or renamed, and `poetry env use` rewriting envs.toml, all
// schedule a callback after a quiet period, so a burst of filesystem events
// produces a single relink.
//
// Example usage:
//
//	w, err := watcher.New(venvsDir, 2*time.Second, func(ctx context.Context) error {
//		_, err := relink(ctx)
//		return err
//	})
//	if err != nil {
//		return err
//	}
//	return w.Run(ctx) // blocks until ctx is cancelled
package watcher
