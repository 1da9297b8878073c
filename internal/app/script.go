package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/plugin/api"
)

// DefaultScriptTimeout bounds a script run unless Options.ScriptTimeout is set.
const DefaultScriptTimeout = 5 * time.Second

// RunScript runs Lua source against a document. An empty id selects the
// active document. The script sees only the ds modules whose capability is
// listed in scripting.capabilities.
func (app *Application) RunScript(ctx context.Context, id history.HostID, name, source string) error {
	if app.closed.Load() {
		return ErrShutdown
	}
	cfg := app.Config()
	if !cfg.Scripting.Enabled {
		return NewOperationError("script", name, ErrScriptingDisabled)
	}
	doc, err := app.documents.Get(id)
	if err != nil {
		return NewOperationError("script", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, app.opts.ScriptTimeout)
	defer cancel()

	L := api.NewState()
	defer L.Close()
	L.SetContext(ctx)

	registry, err := api.DefaultRegistry(&api.Context{Ctx: ctx, History: doc, Scene: doc})
	if err != nil {
		return NewOperationError("script", name, err)
	}
	granted := make([]api.Capability, 0, len(cfg.Scripting.Capabilities))
	for _, c := range cfg.Scripting.Capabilities {
		granted = append(granted, api.Capability(c))
	}
	if err := registry.InjectAll(L, granted...); err != nil {
		return NewOperationError("script", name, err)
	}

	log := app.logger.WithFields(map[string]any{"script": name, "document": string(doc.ID())})
	log.Debug("running")

	start := time.Now()
	err = L.DoString(source)
	elapsed := time.Since(start)
	app.metrics.RecordScript(elapsed, err != nil)

	if err != nil {
		log.Error("failed after %s: %v", elapsed, err)
		return NewOperationError("script", name, err)
	}
	log.Debug("done in %s", elapsed)
	return nil
}

// RunScriptFile reads a Lua file and runs it with RunScript.
func (app *Application) RunScriptFile(ctx context.Context, id history.HostID, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return NewOperationError("script", path, fmt.Errorf("read: %w", err))
	}
	return app.RunScript(ctx, id, filepath.Base(path), string(source))
}
