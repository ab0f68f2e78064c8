/*
Package document implements the secwall document model: the closed set of
credential variants (SNMPv1/v3 profiles, user/password pairs, tokens, SSH
keys, PEM certificates) that a portfolio stores.

Each variant splits its fields into a public half (metadata, safe to hand
to producers) and a private half (secret material, handed only to
consumers). The Document interface is the capability set every variant
must implement: Clone, Validate, the four serialize/update halves, and
the two equality halves. There is no shared base class — each variant is
a plain struct embedding Header, and a package-level factory keyed on the
type string builds zero-value instances on demand.
*/
package document
