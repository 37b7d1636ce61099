//
// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package certificates holds helpers for working with ordered certificate
// paths. A path is leaf first, ascending towards (but not necessarily
// including) the root. All comparisons are on raw DER bytes - reparsed
// object equality is not good enough here.
package certificates

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// OID 1.3.6.1.4.1.11129.2.4.2 (RFC 6962 s3.3)
var oidEmbeddedSCT = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}

// Leaf returns the end-entity certificate of the path.
func Leaf(path []*x509.Certificate) (*x509.Certificate, error) {
	if len(path) == 0 {
		return nil, errors.New("certificate path is empty")
	}
	return path[0], nil
}

// IsSelfSigned reports whether the path terminates in a self-signed
// certificate: the tail cert's subject must equal its issuer and its
// signature must verify against its own public key.
func IsSelfSigned(path []*x509.Certificate) (bool, error) {
	if len(path) == 0 {
		return false, errors.New("certificate path is empty")
	}
	root := path[len(path)-1]
	if !bytes.Equal(root.RawSubject, root.RawIssuer) {
		return false, nil
	}
	if err := root.CheckSignature(root.SignatureAlgorithm, root.RawTBSCertificate, root.Signature); err != nil {
		return false, nil
	}
	return true, nil
}

// ContainsParent reports whether parent is a contiguous suffix of path,
// compared certificate by certificate on DER bytes.
func ContainsParent(path, parent []*x509.Certificate) bool {
	if len(parent) > len(path) {
		return false
	}
	offset := len(path) - len(parent)
	for i, c := range parent {
		if !bytes.Equal(path[offset+i].Raw, c.Raw) {
			return false
		}
	}
	return true
}

// TrimParent removes the parent suffix from path.
func TrimParent(path, parent []*x509.Certificate) ([]*x509.Certificate, error) {
	if !ContainsParent(path, parent) {
		return nil, errors.New("certificate path does not contain parent")
	}
	return append([]*x509.Certificate{}, path[:len(path)-len(parent)]...), nil
}

// Append joins a child path onto its parent path, child certs first.
func Append(parent, child []*x509.Certificate) []*x509.Certificate {
	out := make([]*x509.Certificate, 0, len(child)+len(parent))
	out = append(out, child...)
	out = append(out, parent...)
	return out
}

// EmbeddedSCTs returns the TLS-encoded SignedCertificateTimestampList
// carried in the certificate's embedded SCT extension, unwrapped from its
// DER OCTET STRING. Returns (nil, nil) if the extension is not present.
func EmbeddedSCTs(cert *x509.Certificate) ([]byte, error) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidEmbeddedSCT) {
			continue
		}
		der := cryptobyte.String(ext.Value)
		var list cryptobyte.String
		if !der.ReadASN1(&list, cryptobyte_asn1.OCTET_STRING) || !der.Empty() {
			return nil, fmt.Errorf("malformed SCT extension in certificate with serial %v", cert.SerialNumber)
		}
		return list, nil
	}
	return nil, nil
}
