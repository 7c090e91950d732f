package wallet

import "encoding/json"

// Record is a persisted wallet: the mnemonic, the account address it
// derives to and the hex private key. Records are replaced wholesale,
// never edited in place.
type Record struct {
	MnemonicPhrase string `json:"mnemonicPhrase"`
	Address        string `json:"address"`
	PrivateKey     string `json:"privateKey"`
	PasswordHash   string `json:"passwordHash,omitempty"`
}

// recordJSON also accepts the field names written by older wallet builds.
type recordJSON struct {
	MnemonicPhrase string `json:"mnemonicPhrase"`
	Address        string `json:"address"`
	PrivateKey     string `json:"privateKey"`
	PasswordHash   string `json:"passwordHash,omitempty"`

	SeedPhrase    string `json:"seedPhrase,omitempty"`
	EthAddress    string `json:"ethAddress,omitempty"`
	EthPrivateKey string `json:"ethPrivateKey,omitempty"`
}

// UnmarshalJSON decodes a record, falling back to legacy field names.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		MnemonicPhrase: firstNonEmpty(raw.MnemonicPhrase, raw.SeedPhrase),
		Address:        firstNonEmpty(raw.Address, raw.EthAddress),
		PrivateKey:     firstNonEmpty(raw.PrivateKey, raw.EthPrivateKey),
		PasswordHash:   raw.PasswordHash,
	}
	return nil
}

// String returns the address only so records never leak secrets into logs.
func (r Record) String() string {
	return r.Address
}

// Protected reports whether the record carries its own password hash.
func (r Record) Protected() bool {
	return r.PasswordHash != ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
