package blockfrost

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAddress = "addr_test1qp23t8sku3nyxncq7ejxfqvtjxj3lu3tzfl30qwfdwjm2c" +
	"yym9vp7dy32e0rf2hxkwf8czg6kv83lm4zneme48luc97se5j5u3"

const utxosFixture = `[
  {
    "tx_hash": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "output_index": 0,
    "address": "%s",
    "amount": [
      {"unit": "lovelace", "quantity": "1500000"}
    ],
    "data_hash": null,
    "inline_datum": null,
    "reference_script_hash": null
  },
  {
    "tx_hash": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
    "output_index": 2,
    "address": "%s",
    "amount": [
      {"unit": "lovelace", "quantity": "2000000"},
      {"unit": "1111111111111111111111111111111111111111111111111111111174", "quantity": "7"}
    ],
    "data_hash": "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc",
    "inline_datum": null,
    "reference_script_hash": null
  }
]`

func TestGetUtxos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "test-project", r.Header.Get("project_id"))
			require.Equal(t,
				fmt.Sprintf("/addresses/%s/utxos", testAddress), r.URL.Path,
			)
			fmt.Fprintf(w, utxosFixture, testAddress, testAddress)
		},
	))
	defer server.Close()

	svc, err := NewService(server.URL, "test-project")
	require.NoError(t, err)

	utxos, err := svc.GetUtxos(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	require.Equal(t, uint32(0), utxos[0].OutputIndex)
	require.Len(t, utxos[0].Assets, 1)
	require.Equal(t, "lovelace", utxos[0].Assets[0].Unit)
	require.Equal(t, "1500000", utxos[0].Assets[0].Quantity)
	require.Empty(t, utxos[0].DatumHash)

	require.Equal(t, uint32(2), utxos[1].OutputIndex)
	require.Len(t, utxos[1].Assets, 2)
	require.NotEmpty(t, utxos[1].DatumHash)
}

func TestGetUtxosUnknownAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"status_code":404}`, http.StatusNotFound)
		},
	))
	defer server.Close()

	svc, err := NewService(server.URL, "")
	require.NoError(t, err)

	// a never-used address is an empty utxo set, not an error
	utxos, err := svc.GetUtxos(context.Background(), testAddress)
	require.NoError(t, err)
	require.Empty(t, utxos)
}

func TestGetUtxosServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	))
	defer server.Close()

	svc, err := NewService(server.URL, "")
	require.NoError(t, err)

	_, err = svc.GetUtxos(context.Background(), testAddress)
	require.Error(t, err)
}

func TestFailingNewService(t *testing.T) {
	_, err := NewService("", "")
	require.Error(t, err)
}
