package models

import (
	"encoding/json"
	"math"
)

// Rate процентная доля суммы относительно общего оборота.
//
// При нулевом обороте деление даёт NaN; движок статистики не подменяет его
// нулём, а encoding/json не умеет сериализовать NaN, поэтому на проводе
// такое значение превращается в null.
type Rate float64

func (r Rate) MarshalJSON() ([]byte, error) {
	value := float64(r)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return []byte("null"), nil
	}

	return json.Marshal(value)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate(math.NaN())
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*r = Rate(value)

	return nil
}
