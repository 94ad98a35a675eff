package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

// Watch re-reads the .env file whenever it changes and delivers a freshly
// built Config to onReload. It returns a stop function. The backend origin
// and timeouts can be switched without restarting the gateway; the listen
// address and Redis connection are only read at startup.
func Watch(envPath string, onReload func(*Config)) (func(), error) {
	if envPath == "" {
		envPath = ".env"
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace .env atomically,
	// which drops a watch placed on the file itself.
	dir := filepath.Dir(envPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(envPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if vars, err := godotenv.Read(envPath); err == nil {
					for k, v := range vars {
						os.Setenv(k, v)
					}
					onReload(Load())
				}
			case <-watcher.Errors:
				// Watch errors are not fatal; the current config stays active.
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
