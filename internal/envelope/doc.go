// Package envelope defines the catospher wire format.
//
// An envelope is a flat JSON object:
//
//	{
//	  "v": 1,
//	  "salt": "<base64, 16 bytes>",
//	  "iv": "<base64, 12 bytes>",
//	  "ct": "<base64, ciphertext with 16-byte GCM tag>",
//	  "iter": 200000,
//	  "kdf": "PBKDF2-SHA256"
//	}
//
// Field order is irrelevant and unknown fields are ignored. iter and kdf may
// be absent in envelopes written by older tools. Everything needed to decrypt
// travels in the envelope except the credential.
package envelope
