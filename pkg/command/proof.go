package command

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/espressif/openthread/pkg/session"
	"github.com/espressif/openthread/pkg/tcat"
	"github.com/espressif/openthread/pkg/tlv"
)

// ChallengeSize is the length of a random number challenge in bytes.
const ChallengeSize = 8

// ComputeProof returns HMAC-SHA256 keyed by credential over
// challenge || publicKey.
func ComputeProof(credential, challenge, publicKey []byte) []byte {
	mac := hmac.New(sha256.New, credential)
	mac.Write(challenge)
	mac.Write(publicKey)
	return mac.Sum(nil)
}

// credentialKinds maps the present_hash credential names to their request
// type and value encoding.
var credentialKinds = map[string]struct {
	typ    tcat.Type
	decode func(string) ([]byte, error)
}{
	"pskd":    {tcat.PresentPskdHash, utf8Credential},
	"pskc":    {tcat.PresentPskcHash, hex.DecodeString},
	"install": {tcat.PresentInstallCodeHash, utf8Credential},
}

func utf8Credential(s string) ([]byte, error) {
	return []byte(s), nil
}

func preparePresentHash(args []string, sess *session.Session) (request, error) {
	if len(args) == 0 {
		return request{}, notPrepared("missing hash code name")
	}
	kind, ok := credentialKinds[args[0]]
	if !ok {
		return request{}, notPrepared("Hash code name incorrect.")
	}
	if len(args) < 2 {
		return request{}, notPrepared("missing %s value", args[0])
	}
	credential, err := kind.decode(args[1])
	if err != nil {
		return request{}, notPrepared("invalid %s value: %v", args[0], err)
	}
	if sess.PeerPublicKey == nil {
		return request{}, notPrepared("Peer certificate not present.")
	}
	if sess.PeerChallenge == nil {
		return request{}, notPrepared("Peer challenge not present.")
	}
	return encodeRequest(kind.typ, ComputeProof(credential, sess.PeerChallenge, sess.PeerPublicKey))
}

func preparePeerPskdHash(args []string, sess *session.Session) (request, error) {
	if sess.PeerPublicKey == nil {
		return request{}, notPrepared("Peer certificate not present.")
	}
	if len(args) == 0 {
		return request{}, notPrepared("missing PSKd")
	}
	challenge := make([]byte, ChallengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return request{}, notPrepared("generate challenge: %v", err)
	}
	req, err := encodeRequest(tcat.GetPskdHash, challenge)
	req.expectedDigest = ComputeProof([]byte(args[0]), challenge, sess.PeerPublicKey)
	return req, err
}

func processChallenge(resp tlv.TLV, sess *session.Session) {
	if len(resp.Value) != ChallengeSize {
		fmt.Fprintln(sess.Out, "Challenge format invalid.")
		sess.Logger.Debug("challenge rejected", "len", len(resp.Value))
		return
	}
	sess.PeerChallenge = append([]byte(nil), resp.Value...)
}

func processPeerPskdHash(resp tlv.TLV, req request, sess *session.Session) {
	if hmac.Equal(resp.Value, req.expectedDigest) {
		fmt.Fprintln(sess.Out, "Requested hash is valid.")
	} else {
		fmt.Fprintln(sess.Out, "Requested hash is NOT valid.")
	}
}
