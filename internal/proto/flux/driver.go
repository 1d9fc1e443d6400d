package flux

import (
	"fmt"
	"sync"
)

// The byte-level bulb protocol is not implemented in this repository; a
// linked driver package registers its Dialer (and optionally a Scanner) at
// init time, in the manner of database/sql drivers.

// DefaultDriver is the wire dialect used when a bulb does not name one.
const DefaultDriver = "ledenet"

var (
	driverMu sync.RWMutex
	dialers  = map[string]Dialer{}
	scanners = map[string]Scanner{}
)

// RegisterDialer makes a protocol driver available under the given name.
// It panics on a duplicate registration, which indicates two drivers
// claiming the same dialect.
func RegisterDialer(name string, d Dialer) {
	driverMu.Lock()
	defer driverMu.Unlock()
	if d == nil {
		panic("flux: nil dialer registered")
	}
	if _, dup := dialers[name]; dup {
		panic(fmt.Sprintf("flux: dialer %q registered twice", name))
	}
	dialers[name] = d
}

// RegisterScanner makes a network scanner available under the given name.
func RegisterScanner(name string, s Scanner) {
	driverMu.Lock()
	defer driverMu.Unlock()
	if s == nil {
		panic("flux: nil scanner registered")
	}
	if _, dup := scanners[name]; dup {
		panic(fmt.Sprintf("flux: scanner %q registered twice", name))
	}
	scanners[name] = s
}

// DialerFor returns the registered dialer for a dialect name.
func DialerFor(name string) (Dialer, bool) {
	if name == "" {
		name = DefaultDriver
	}
	driverMu.RLock()
	defer driverMu.RUnlock()
	d, ok := dialers[name]
	return d, ok
}

// ScannerFor returns the registered scanner for a dialect name.
func ScannerFor(name string) (Scanner, bool) {
	if name == "" {
		name = DefaultDriver
	}
	driverMu.RLock()
	defer driverMu.RUnlock()
	s, ok := scanners[name]
	return s, ok
}
