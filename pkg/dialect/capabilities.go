package dialect

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/omnidal-io/omnidal/pkg/schema"
)

//go:embed capabilities/*.yaml
var capabilityFS embed.FS

var (
	capMu    sync.Mutex
	capCache = make(map[string][]schema.DataTypeCapability)
)

// loadCapabilities reads the built-in data type catalog for a dialect.
// Catalogs are embedded YAML, parsed once and shared; they stand in for
// the DataTypes collection on providers that expose none.
func loadCapabilities(name string) []schema.DataTypeCapability {
	capMu.Lock()
	defer capMu.Unlock()

	if caps, ok := capCache[name]; ok {
		return caps
	}

	data, err := capabilityFS.ReadFile("capabilities/" + name + ".yaml")
	if err != nil {
		panic(fmt.Sprintf("dialect: missing embedded capability catalog for %s: %v", name, err))
	}
	var caps []schema.DataTypeCapability
	if err := yaml.Unmarshal(data, &caps); err != nil {
		panic(fmt.Sprintf("dialect: invalid capability catalog for %s: %v", name, err))
	}
	capCache[name] = caps
	return caps
}
