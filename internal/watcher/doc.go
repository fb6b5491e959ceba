// Package watcher reports file system changes under an indexed directory
// so the index can be rebuilt.
//
// fsnotify is used when available, with a polling fallback for file
// systems where it fails. Changes are batched: an editor save or a git
// checkout produces one batch instead of hundreds, and a tree that never
// goes quiet still yields a batch every MaxWait.
//
//	w, err := watcher.New(root, watcher.Options{IgnoreNames: []string{".snapfind_index"}})
//	if err != nil {
//		return err
//	}
//	go w.Run(ctx)
//	for batch := range w.Batches() {
//		// rebuild
//	}
package watcher
