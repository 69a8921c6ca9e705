package binance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		message string
		want    string
	}{
		{
			name:    "binance documented request",
			secret:  "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
			message: "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559",
			want:    "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		},
		{
			name:    "rfc 4231 case 2",
			secret:  "Jefe",
			message: "what do ya want for nothing?",
			want:    "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sign(tt.secret, tt.message)
			require.Equal(t, tt.want, got)
			require.Len(t, got, 64)
		})
	}
}

func TestSignIsDeterministic(t *testing.T) {
	require.Equal(t, Sign("secret", "a=1"), Sign("secret", "a=1"))
	require.NotEqual(t, Sign("secret", "a=1"), Sign("secret", "a=2"))
	require.NotEqual(t, Sign("secret", "a=1"), Sign("other", "a=1"))
}
