package cosign

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kollektive-hackathon/flowkit/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/flowkit/internal/pkg/reject"
	"github.com/kollektive-hackathon/flowkit/pkg/cadencejson"
	"github.com/kollektive-hackathon/flowkit/pkg/transaction"
)

var errMessageMismatch = errors.New("signable message does not encode the voucher envelope")

type cosignService struct {
	payer   blockchain.Payer
	allowed *blockchain.ScriptAllowList
}

// VerifyAndSign signs the envelope of a voucher the payer agrees to pay for.
func (cs *cosignService) VerifyAndSign(request CosignRequest) ([]CompositeSignature, *reject.ProblemWithTrace) {
	signable := request.Payload
	voucher := signable.Voucher

	name, ok := cs.allowed.Match(voucher.Cadence)
	if !ok {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.ScriptNotAllowedProblem(),
			Cause:   errors.New("script is not allowed"),
		}
	}

	payer, err := cadencejson.ParseAddress(withPrefix(voucher.Payer))
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.RequestValidationProblem("payer: " + err.Error()),
			Cause:   err,
		}
	}
	if !bytes.Equal(transaction.PadAddress(payer), transaction.PadAddress(cs.payer.Address())) {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NotPayerProblem(payer.String()),
			Cause:   errors.Errorf("payer %s is not served", payer),
		}
	}

	p, err := voucher.Party(cs.payer.NewHasher())
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.RequestValidationProblem(err.Error()),
			Cause:   err,
		}
	}

	if signable.Message != "" && !strings.EqualFold(strings.TrimPrefix(signable.Message, "0x"), envelopeMessage(p.EnvelopeMessage())) {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.MessageMismatchProblem(),
			Cause:   errMessageMismatch,
		}
	}

	log.Info().Msgf("Cosigning %s transaction for payer %s", name, payer)

	tx, err := cs.payer.SignPartyAsPayer(p)
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.UnexpectedProblem(err),
			Cause:   err,
		}
	}

	signatures := make([]CompositeSignature, 0, len(tx.EnvelopeSignatures))
	for _, s := range tx.EnvelopeSignatures {
		signatures = append(signatures, newCompositeSignature(s.Address, s.KeyID, s.Signature))
	}
	return signatures, nil
}

func envelopeMessage(encoded []byte) string {
	tag := transaction.TransactionDomainTag
	return hex.EncodeToString(tag[:]) + hex.EncodeToString(encoded)
}
