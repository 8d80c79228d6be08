package param

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// MarshalJSON encodes parameters as an object keeping the parameter
// order.
func (p FloatParameters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, par := range p {
		if i != 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(par.Name())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(par.Get())
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", par.Name(), err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON sets parameter values from an object. The parameters
// should already exist; unknown names are an error.
func (p *FloatParameters) UnmarshalJSON(data []byte) error {
	m := make(map[string]float64)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(*p) == 0 && len(m) > 0 {
		return ErrNoParameters
	}
	return p.SetMap(m)
}

// ReadFromJSON reads parameter values from a JSON file.
func (p *FloatParameters) ReadFromJSON(fn string) error {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("reading %s: %w", fn, err)
	}
	return nil
}
