// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

func TestAmountFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    btcutil.Amount
		wantErr bool
	}{
		{in: "10000", want: 10000},
		{in: "546 sat", want: 546},
		{in: "0.0001", want: 10000},
		{in: "0.5 BTC", want: 5e7},
		{in: "-1", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "2200000000000000", wantErr: true},
	}
	for _, test := range tests {
		var a AmountFlag
		err := a.UnmarshalFlag(test.in)
		if test.wantErr {
			require.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.want, a.Amount, test.in)
	}

	s, err := NewAmountFlag(10000).MarshalFlag()
	require.NoError(t, err)
	require.Equal(t, "10000 sat", s)
}

func TestExplicitString(t *testing.T) {
	t.Parallel()

	e := NewExplicitString("http://default")
	require.False(t, e.ExplicitlySet())
	require.Equal(t, "http://net", e.OrDefault("http://net"))

	require.NoError(t, e.UnmarshalFlag("http://mine"))
	require.True(t, e.ExplicitlySet())
	require.Equal(t, "http://mine", e.OrDefault("http://net"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	addr, err := NormalizeAddress("localhost", "18443")
	require.NoError(t, err)
	require.Equal(t, "localhost:18443", addr)

	addr, err = NormalizeAddress("127.0.0.1:8332", "18443")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8332", addr)

	endpoint, err := NormalizeEndpoint("https://regtest.opnet.org")
	require.NoError(t, err)
	require.Equal(t, "https://regtest.opnet.org", endpoint)

	_, err = NormalizeEndpoint("regtest.opnet.org")
	require.Error(t, err)
	_, err = NormalizeEndpoint("ftp://host")
	require.Error(t, err)
}

func TestFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exists, err := FileExists(dir)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.False(t, exists)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "escrow"),
		CleanAndExpandPath("~/escrow"))
	require.Equal(t, "", CleanAndExpandPath(""))
	require.Equal(t, "/a/c", CleanAndExpandPath("/a/b/../c"))
}
