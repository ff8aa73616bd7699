package keys

// Keys builds storage keys for one cache instance.
// With an empty prefix keys are exactly:
//
//	<op>            call counter
//	<op>:inputs     rendered arguments, one entry per call
//	<op>:outputs    returned values, one entry per call
//	<uuid>          stored values
type Keys struct {
	prefix string
}

func New(prefix string) Keys {
	if prefix != "" {
		prefix += ":"
	}
	return Keys{prefix: prefix}
}

func (k Keys) Value(key string) string  { return k.prefix + key }
func (k Keys) Counter(op string) string { return k.prefix + op }
func (k Keys) Inputs(op string) string  { return k.prefix + op + ":inputs" }
func (k Keys) Outputs(op string) string { return k.prefix + op + ":outputs" }
