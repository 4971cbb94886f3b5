package autoload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// Loader scans a directory tree for tools/, resources/, and prompts/
// subdirectories of JSON manifest files and registers what it finds
// into a Registry. A missing root directory is logged and treated as
// zero components, not an error; a malformed individual manifest file
// is skipped with a warning so one bad file doesn't block the rest.
type Loader struct {
	root     string
	registry *registry.Registry
	catalog  *HandlerCatalog
	log      mcplog.Logger

	loadedTools     []string
	loadedResources []string
	loadedPrompts   []string
}

// New builds a Loader rooted at dir, registering into r using handlers
// resolved from catalog.
func New(dir string, r *registry.Registry, catalog *HandlerCatalog, log mcplog.Logger) *Loader {
	if log == nil {
		log = mcplog.Noop{}
	}
	if catalog == nil {
		catalog = NewHandlerCatalog()
	}
	return &Loader{root: dir, registry: r, catalog: catalog, log: log}
}

// Load scans root/tools, root/resources, and root/prompts and registers
// every valid manifest found. It returns the count of components
// loaded in each category.
func (l *Loader) Load() (tools, resources, prompts int) {
	tools = l.loadTools()
	resources = l.loadResources()
	prompts = l.loadPrompts()
	return
}

// Reload removes every component this Loader registered on its
// previous Load/Reload call, then loads again. Without this, a watcher
// that calls Load repeatedly would see every changed manifest rejected
// as a duplicate of its stale predecessor.
func (l *Loader) Reload() (tools, resources, prompts int) {
	for _, name := range l.loadedTools {
		l.registry.RemoveTool(name)
	}
	for _, uri := range l.loadedResources {
		l.registry.RemoveResource(uri)
	}
	for _, name := range l.loadedPrompts {
		l.registry.RemovePrompt(name)
	}
	return l.Load()
}

func (l *Loader) loadTools() int {
	dir := filepath.Join(l.root, "tools")
	count := 0
	l.loadedTools = l.loadedTools[:0]
	l.walkJSON(dir, "tools", func(path string, data []byte) {
		var m ToolManifest
		if err := json.Unmarshal(data, &m); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		if m.Name == "" {
			l.log.Warn("autoload: skipping %s: manifest has no name", path)
			return
		}
		handler, ok := l.catalog.tool(m.Handler)
		if !ok {
			l.log.Warn("autoload: skipping %s: no catalog handler named %q", path, m.Handler)
			return
		}
		def := protocol.Tool{Name: m.Name, Description: m.Description, InputSchema: m.InputSchema}
		if err := l.registry.RegisterTool(def, handler); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		l.loadedTools = append(l.loadedTools, def.Name)
		count++
	})
	return count
}

func (l *Loader) loadResources() int {
	dir := filepath.Join(l.root, "resources")
	count := 0
	l.loadedResources = l.loadedResources[:0]
	l.walkJSON(dir, "resources", func(path string, data []byte) {
		var m ResourceManifest
		if err := json.Unmarshal(data, &m); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		if m.URI == "" {
			l.log.Warn("autoload: skipping %s: manifest has no uri", path)
			return
		}
		var provider registry.ResourceProvider
		if m.Provider != "" {
			p, ok := l.catalog.resource(m.Provider)
			if !ok {
				l.log.Warn("autoload: skipping %s: no catalog provider named %q", path, m.Provider)
				return
			}
			provider = p
		}
		def := protocol.Resource{URI: m.URI, Name: m.Name, Description: m.Description, MimeType: m.MimeType}
		if err := l.registry.RegisterResource(def, provider); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		l.loadedResources = append(l.loadedResources, def.URI)
		count++
	})
	return count
}

func (l *Loader) loadPrompts() int {
	dir := filepath.Join(l.root, "prompts")
	count := 0
	l.loadedPrompts = l.loadedPrompts[:0]
	l.walkJSON(dir, "prompts", func(path string, data []byte) {
		var m PromptManifest
		if err := json.Unmarshal(data, &m); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		if m.Name == "" {
			l.log.Warn("autoload: skipping %s: manifest has no name", path)
			return
		}
		template := make([]registry.TemplateMessage, 0, len(m.Messages))
		for _, msg := range m.Messages {
			template = append(template, registry.TemplateMessage{Role: msg.Role, Text: msg.Text})
		}
		def := protocol.Prompt{Name: m.Name, Description: m.Description, Arguments: m.Arguments}
		if err := l.registry.RegisterPrompt(def, template); err != nil {
			l.log.Warn("autoload: skipping %s: %v", path, err)
			return
		}
		l.loadedPrompts = append(l.loadedPrompts, def.Name)
		count++
	})
	return count
}

func (l *Loader) walkJSON(dir, kind string, handle func(path string, data []byte)) {
	info, err := os.Stat(dir)
	if err != nil {
		l.log.Warn("autoload: no %s directory at %s, skipping", kind, dir)
		return
	}
	if !info.IsDir() {
		l.log.Warn("autoload: %s is not a directory, skipping", dir)
		return
	}
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			l.log.Warn("autoload: error walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			l.log.Warn("autoload: skipping %s: %v", path, readErr)
			return nil
		}
		handle(path, data)
		return nil
	})
	if err != nil {
		l.log.Warn("autoload: error walking %s: %v", dir, err)
	}
}
