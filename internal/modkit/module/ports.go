package module

import "reflect"

// PortSet marks a module-defined port bundle. Each module declares its own
// concrete struct and returns it from Ports
type PortSet = any

// PortsOf digs an interface T out of a module's Ports() bundle: the bundle
// itself first, then its exported struct fields. The binaries use this to
// pull Runner, Stasher and Publisher seams out of built modules
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if direct, ok := p.(T); ok {
		return direct, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf panics when the port is missing, naming the module at fault
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
