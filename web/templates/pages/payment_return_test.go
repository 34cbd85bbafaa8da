package pages

import (
	"context"
	"strings"
	"testing"
)

func TestPaymentReturn(t *testing.T) {
	tests := []struct {
		name    string
		props   PaymentReturnProps
		want    []string
		notWant []string
	}{
		{
			name:    "succeeded",
			props:   PaymentReturnProps{Title: "Payment successful", Succeeded: true, Message: "Your booking is confirmed.", TransactionID: "42-1730000000000", Amount: "100.00 ETB"},
			want:    []string{`<h1 style="color:#067647">Payment successful</h1>`, "<code>42-1730000000000</code>", "Amount 100.00 ETB"},
			notWant: []string{"#b42318"},
		},
		{
			name:    "failed without details",
			props:   PaymentReturnProps{Title: "Payment failed", Message: "<b>declined</b>"},
			want:    []string{`<h1 style="color:#b42318">Payment failed</h1>`, "&lt;b&gt;declined&lt;/b&gt;"},
			notWant: []string{"<code>", "Amount", "<b>declined"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := PaymentReturn(tt.props).Render(context.Background(), &sb); err != nil {
				t.Fatalf("Render error: %v", err)
			}
			html := sb.String()
			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("page missing %q in %s", want, html)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(html, nw) {
					t.Errorf("page must not contain %q", nw)
				}
			}
		})
	}
}
