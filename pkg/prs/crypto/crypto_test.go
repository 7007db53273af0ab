package crypto

import "testing"

func TestKeyFingerprintOf(t *testing.T) {
	k := Key{Proto: ProtoGPG, Fingerprint: "  aaaa1111bbbb2222cccc3333dddd4444eeee5555  "}
	if k.FingerprintOf(false) != "AAAA1111BBBB2222CCCC3333DDDD4444EEEE5555" {
		t.Errorf("unexpected full fingerprint: %s", k.FingerprintOf(false))
	}
	if k.FingerprintOf(true) != "DDDD4444EEEE5555" && len(k.FingerprintOf(true)) != 16 {
		t.Errorf("short fingerprint should be 16 chars, got %q", k.FingerprintOf(true))
	}
}

func TestFingerprintsEqual(t *testing.T) {
	if !FingerprintsEqual(" abcd ", "ABCD") {
		t.Error("expected trimmed/uppercased fingerprints to be equal")
	}
	if FingerprintsEqual("", "") {
		t.Error("empty fingerprints must never compare equal")
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Proto: ProtoGPG, Fingerprint: "AAAABBBBCCCCDDDDEEEEFFFF0000111122223333", UserIDs: []string{"Alice <alice@example.com>"}}
	got := k.String()
	want := "[GPG] 0000111122223333 - Alice <alice@example.com>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRecipientsAddRemove(t *testing.T) {
	k1 := Key{Proto: ProtoGPG, Fingerprint: "1111111111111111111111111111111111111a"}
	k2 := Key{Proto: ProtoGPG, Fingerprint: "2222222222222222222222222222222222222b"}

	r := NewRecipients([]Key{k1})
	r.Add(k2)
	if r.Len() != 2 {
		t.Fatalf("expected 2 recipients, got %d", r.Len())
	}
	if !r.HasFingerprint(k2.Fingerprint) {
		t.Error("expected recipients to contain k2")
	}

	r.Remove(k1)
	if r.Len() != 1 || r.HasFingerprint(k1.Fingerprint) {
		t.Error("expected k1 to be removed")
	}
}

func TestRecipientsDifferentProtoPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when mixing protocols")
		}
	}()
	NewRecipients([]Key{{Proto: ProtoGPG}, {Proto: Proto(99)}})
}

func TestProtoName(t *testing.T) {
	if ProtoGPG.Name() != "GPG" {
		t.Errorf("got %q", ProtoGPG.Name())
	}
}
