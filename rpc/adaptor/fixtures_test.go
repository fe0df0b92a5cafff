package adaptor

import (
	"encoding/json"
	"fmt"
)

// Payloads shaped like the results of real nodes of each release family.

const (
	testTime      = "2020-03-01T10:00:00.123456789Z"
	testPubKey    = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	testSignature = "c2lnbmF0dXJl"
	testBlockID   = `{"hash":"AABB","parts":{"total":"1","hash":"CCDD"}}`
)

func dialectOf(version string) *dialect {
	a, err := ForVersion(version[1:] + ".0")
	if err != nil {
		panic(err)
	}
	return a.(codec).d
}

func headerJSON(version, height string) string {
	d := dialectOf(version)
	h := map[string]interface{}{
		"chain_id":          "test-chain",
		"height":            height,
		"time":              testTime,
		"last_block_id":     json.RawMessage(testBlockID),
		"last_commit_hash":  "01",
		"data_hash":         "",
		"validators_hash":   "02",
		"consensus_hash":    "04",
		"app_hash":          "05",
		"last_results_hash": "",
		"evidence_hash":     "",
	}
	if d.headerVersion {
		h["version"] = map[string]string{"block": "10", "app": "1"}
	}
	if d.headerTxCounts {
		h["num_txs"] = "1"
		h["total_txs"] = "42"
	}
	if d.headerProposer {
		h["next_validators_hash"] = "03"
		h["proposer_address"] = "0A0B"
	}
	bz, err := json.Marshal(h)
	if err != nil {
		panic(err)
	}
	return string(bz)
}

func voteJSON(version, height, blockID string) string {
	sig := `"` + testSignature + `"`
	if dialectOf(version).taggedSignatures {
		sig = `{"type":"tendermint/SignatureEd25519","value":"` + testSignature + `"}`
	}
	return fmt.Sprintf(`{"type":2,"height":%q,"round":"0","timestamp":%q,"block_id":%s,`+
		`"validator_address":"0A0B","validator_index":"0","signature":%s}`,
		height, testTime, blockID, sig)
}

func commitJSON(version, height string) string {
	if dialectOf(version).commitSignatures {
		return fmt.Sprintf(`{"height":%q,"round":0,"block_id":%s,"signatures":[`+
			`{"block_id_flag":2,"validator_address":"0A0B","timestamp":%q,"signature":%q},`+
			`{"block_id_flag":1,"validator_address":"","timestamp":"0001-01-01T00:00:00Z","signature":null}]}`,
			height, testBlockID, testTime, testSignature)
	}
	return fmt.Sprintf(`{"block_id":%s,"precommits":[%s,null]}`,
		testBlockID, voteJSON(version, height, testBlockID))
}

func commitResult(version, height string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"signed_header":{"header":%s,"commit":%s},"canonical":true}`,
		headerJSON(version, height), commitJSON(version, height)))
}

func blockJSON(version, height string) string {
	return fmt.Sprintf(`{"header":%s,"data":{"txs":["dHgx"]},"evidence":{"evidence":null},"last_commit":%s}`,
		headerJSON(version, height), commitJSON(version, height))
}

func blockResult(version, height string) json.RawMessage {
	if dialectOf(version).blockMeta {
		return json.RawMessage(fmt.Sprintf(`{"block_meta":{"block_id":%s,"header":%s},"block":%s}`,
			testBlockID, headerJSON(version, height), blockJSON(version, height)))
	}
	return json.RawMessage(fmt.Sprintf(`{"block_id":%s,"block":%s}`, testBlockID, blockJSON(version, height)))
}

func annotationsJSON(version string) string {
	if dialectOf(version).events {
		return `"events":[{"type":"transfer","attributes":[{"key":"c2VuZGVy","value":"YWxpY2U="}]}]`
	}
	return `"tags":[{"key":"c2VuZGVy","value":"YWxpY2U="}]`
}

func deliverTxJSON(version string) string {
	return fmt.Sprintf(`{"code":0,"data":"AQI=","log":"ok","gasWanted":"10","gasUsed":"5",%s}`,
		annotationsJSON(version))
}

func updateKeyJSON(version string) string {
	if dialectOf(version).abciUpdateKeys {
		return `{"type":"ed25519","data":"` + testPubKey + `"}`
	}
	return `{"type":"tendermint/PubKeyEd25519","value":"` + testPubKey + `"}`
}

func statusResult(version string) json.RawMessage {
	d := dialectOf(version)
	other := `{"tx_index":"on","rpc_address":"tcp://0.0.0.0:26657"}`
	if d.nodeInfoOtherList {
		other = `["amino_version=0.10.1","tx_index=on","rpc_addr=tcp://0.0.0.0:26657"]`
	}
	protocol := ""
	if d.protocolVersion {
		protocol = `"protocol_version":{"p2p":"7","block":"10","app":"1"},`
	}
	catchingUp := `,"catching_up":false`
	if d.catchingUpOptional {
		catchingUp = ""
	}
	return json.RawMessage(fmt.Sprintf(`{
		"node_info":{%s"id":"abcd","listen_addr":"tcp://0.0.0.0:26656","network":"test-chain",
			"version":"0.0.0","channels":"4020","moniker":"node0","other":%s},
		"sync_info":{"latest_block_hash":"AABB","latest_app_hash":"05","latest_block_height":"1234",
			"latest_block_time":%q%s},
		"validator_info":{"address":"0A0B","pub_key":{"type":"tendermint/PubKeyEd25519","value":%q},
			"voting_power":"10"}}`,
		protocol, other, testTime, catchingUp, testPubKey))
}
