package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckStructMessagesUseJSONNames(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want map[string]string
	}{
		{
			name: "valid with separators in phone",
			req:  Request{Contact: Contact{Name: "Ana", Email: "ana@example.com", Phone: "+52 (55) 1234-5678"}, Date: "2026-03-10", Time: "09:00 AM"},
			want: nil,
		},
		{
			name: "required fields",
			req:  Request{},
			want: map[string]string{
				"name":  "El nombre es obligatorio",
				"email": "El correo es obligatorio",
				"phone": "El teléfono es obligatorio",
				"date":  "La fecha es obligatoria",
				"time":  "El horario es obligatorio",
			},
		},
		{
			name: "malformed values",
			req: Request{
				Contact: Contact{Name: "Ana", Email: "Ana <ana@example.com>", Phone: "12-34"},
				Date:    "10/03/2026",
				Time:    "09:00 AM",
				Service: strings.Repeat("x", 121),
			},
			want: map[string]string{
				"email":   "El correo no es válido",
				"phone":   "El teléfono no es válido",
				"date":    "La fecha no es válida",
				"service": "El servicio no es válido",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := &ValidationError{}
			checkStruct(tt.req, verr)
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}

func TestCheckStructEmailRequestAcceptsDisplayDate(t *testing.T) {
	verr := &ValidationError{}
	checkStruct(EmailRequest{
		Contact: Contact{Name: "Ana", Email: "ana@example.com", Phone: "5512345678"},
		Date:    "sábado, 4 de enero de 2026",
		Time:    "09:00 AM",
	}, verr)
	assert.Nil(t, verr.orNil())
}
