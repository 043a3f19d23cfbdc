package saml

import "time"

// Protocol namespaces and assertion namespaces, bit-exact per the SAML wire
// format. These are compared by exact string equality throughout the policy
// and metadata layers; never normalize or case-fold them.
const (
	SAML10ProtocolNamespace = "urn:oasis:names:tc:SAML:1.0:protocol"
	SAML11ProtocolNamespace = "urn:oasis:names:tc:SAML:1.1:protocol"
	SAML20ProtocolNamespace = "urn:oasis:names:tc:SAML:2.0:protocol"

	SAML10AssertionNamespace = "urn:oasis:names:tc:SAML:1.0:assertion"
	SAML20AssertionNamespace = "urn:oasis:names:tc:SAML:2.0:assertion"

	SAML20MetadataNamespace = "urn:oasis:names:tc:SAML:2.0:metadata"
)

// Binding identifiers.
const (
	HTTPPostBinding           = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST"
	HTTPPostSimpleSignBinding = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST-SimpleSign"
	HTTPRedirectBinding       = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect"
	HTTPArtifactBinding       = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Artifact"
	SOAPBinding               = "urn:oasis:names:tc:SAML:2.0:bindings:SOAP"
	PAOSBinding               = "urn:oasis:names:tc:SAML:2.0:bindings:PAOS"

	SAML1HTTPPostBinding     = "urn:oasis:names:tc:SAML:1.0:profiles:browser-post"
	SAML1HTTPArtifactBinding = "urn:oasis:names:tc:SAML:1.0:profiles:artifact-01"
	SAML1SOAPBinding         = "urn:oasis:names:tc:SAML:1.0:bindings:SOAP-binding"
)

// Subject confirmation methods.
const (
	SubjectConfirmationMethodBearer      = "urn:oasis:names:tc:SAML:2.0:cm:bearer"
	SubjectConfirmationMethodHolderKey   = "urn:oasis:names:tc:SAML:2.0:cm:holder-of-key"
	SubjectConfirmationMethodSenderVoush = "urn:oasis:names:tc:SAML:2.0:cm:sender-vouches"

	SAML1ConfirmationMethodBearer     = "urn:oasis:names:tc:SAML:1.0:cm:bearer"
	SAML1ConfirmationMethodArtifact   = "urn:oasis:names:tc:SAML:1.0:cm:artifact"
	SAML1ConfirmationMethodArtifact01 = "urn:oasis:names:tc:SAML:1.0:cm:artifact-01"
)

// NameID formats.
const (
	NameIDFormatEntity     = "urn:oasis:names:tc:SAML:2.0:nameid-format:entity"
	NameIDFormatUnspecified = "urn:oasis:names:tc:SAML:1.1:nameid-format:unspecified"
	NameIDFormatPersistent = "urn:oasis:names:tc:SAML:2.0:nameid-format:persistent"
	NameIDFormatTransient  = "urn:oasis:names:tc:SAML:2.0:nameid-format:transient"
	NameIDFormatEmail      = "urn:oasis:names:tc:SAML:1.1:nameid-format:emailAddress"
)

// StatusCode values, §6.
const (
	StatusSuccess                = "urn:oasis:names:tc:SAML:2.0:status:Success"
	StatusRequester              = "urn:oasis:names:tc:SAML:2.0:status:Requester"
	StatusResponder              = "urn:oasis:names:tc:SAML:2.0:status:Responder"
	StatusVersionMismatch        = "urn:oasis:names:tc:SAML:2.0:status:VersionMismatch"
	StatusAuthnFailed            = "urn:oasis:names:tc:SAML:2.0:status:AuthnFailed"
	StatusInvalidNameIDPolicy    = "urn:oasis:names:tc:SAML:2.0:status:InvalidNameIDPolicy"
	StatusNoAuthnContext         = "urn:oasis:names:tc:SAML:2.0:status:NoAuthnContext"
	StatusNoAvailableIDP         = "urn:oasis:names:tc:SAML:2.0:status:NoAvailableIDP"
	StatusNoPassive              = "urn:oasis:names:tc:SAML:2.0:status:NoPassive"
	StatusNoSupportedIDP         = "urn:oasis:names:tc:SAML:2.0:status:NoSupportedIDP"
	StatusPartialLogout          = "urn:oasis:names:tc:SAML:2.0:status:PartialLogout"
	StatusProxyCountExceeded     = "urn:oasis:names:tc:SAML:2.0:status:ProxyCountExceeded"
	StatusRequestDenied          = "urn:oasis:names:tc:SAML:2.0:status:RequestDenied"
	StatusRequestUnsupported     = "urn:oasis:names:tc:SAML:2.0:status:RequestUnsupported"
	StatusRequestVersionDeprecated = "urn:oasis:names:tc:SAML:2.0:status:RequestVersionDeprecated"
	StatusRequestVersionTooHigh  = "urn:oasis:names:tc:SAML:2.0:status:RequestVersionTooHigh"
	StatusRequestVersionTooLow   = "urn:oasis:names:tc:SAML:2.0:status:RequestVersionTooLow"
	StatusResourceNotRecognized  = "urn:oasis:names:tc:SAML:2.0:status:ResourceNotRecognized"
	StatusTooManyResponses       = "urn:oasis:names:tc:SAML:2.0:status:TooManyResponses"
	StatusUnknownAttrProfile     = "urn:oasis:names:tc:SAML:2.0:status:UnknownAttrProfile"
	StatusUnknownPrincipal       = "urn:oasis:names:tc:SAML:2.0:status:UnknownPrincipal"
	StatusUnsupportedBinding     = "urn:oasis:names:tc:SAML:2.0:status:UnsupportedBinding"
)

// XML-DSig / XML-Enc algorithm URIs used by the signature and encryption
// engines (§4.4, §4.5).
const (
	DigestSHA1   = "http://www.w3.org/2000/09/xmldsig#sha1"
	DigestSHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"
	DigestSHA3   = "http://www.w3.org/2007/05/xmldsig-more#sha3-256"

	TransformEnvelopedSignature = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
	TransformExclusiveC14N      = "http://www.w3.org/2001/10/xml-exc-c14n#"
	TransformC14N               = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"

	BlockEncryptionAES128CBC = "http://www.w3.org/2001/04/xmlenc#aes128-cbc"
	BlockEncryptionAES192CBC = "http://www.w3.org/2001/04/xmlenc#aes192-cbc"
	BlockEncryptionAES256CBC = "http://www.w3.org/2001/04/xmlenc#aes256-cbc"
	BlockEncryptionTripleDESCBC = "http://www.w3.org/2001/04/xmlenc#tripledes-cbc"

	KeyTransportRSAOAEPMGF1P = "http://www.w3.org/2001/04/xmlenc#rsa-oaep-mgf1p"
	KeyTransportRSA15        = "http://www.w3.org/2001/04/xmlenc#rsa-1_5"

	// SignatureMethodRSASHA3256 is a SigAlg value a peer may advertise in
	// the AlgorithmSupport extension (SPEC_FULL.md SUPPLEMENTED FEATURE 4);
	// supported by the SimpleSigning rule's blob verification.
	SignatureMethodRSASHA3256 = "http://www.w3.org/2007/05/xmldsig-more#rsa-sha3-256"
)

// Role protocol-support-enumeration well-known QNames, used by metadata role
// lookup (§4.2).
const (
	RoleIDPSSO             = "IDPSSODescriptor"
	RoleSPSSO              = "SPSSODescriptor"
	RoleAuthnAuthority     = "AuthnAuthorityDescriptor"
	RoleAttributeAuthority = "AttributeAuthorityDescriptor"
	RolePDP                = "PDPDescriptor"
	RoleAffiliation        = "AffiliationDescriptor"
)

// DefaultValidDuration is how long generated metadata is advertised valid
// for when no explicit duration is configured.
const DefaultValidDuration = 24 * time.Hour
