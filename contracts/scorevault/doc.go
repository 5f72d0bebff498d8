/*
Package scorevault implements ScoreVault contract: a privacy-preserving score
attestation registry.

Every account can submit a bounded integer score with opaque metadata for
itself. A record can be read back by anyone holding the access token of its
owner or by the owner itself with a signed invocation. The contract keeps
salted digests of access token commitments only. Aggregate
statistics (count, sum, minimum and maximum) over all records are public.

Contract is initialized either by deployment data (admin, minimum score,
maximum score, maximum metadata size) or by a single committee-signed Setup
call.

# Contract notifications

ScoreVault contract does not produce notifications to process.
*/
package scorevault

/*
Contract storage model.

Current conventions:
 <owner>: 20-byte script hash of the record owner
 <offset>: 8-byte big-endian non-negative integer

# Summary
Key-value storage format:
 - 'f' -> std.Serialize(Config)
   contract configuration
 - 's' -> std.Serialize(aggregate)
   count, sum, minimum and maximum of current scores
 - 'q' -> int
   last used record sequence number
 - 'r<owner>' -> std.Serialize(Record)
   score record of the owner
 - 'c<owner>' -> std.Serialize(Credential)
   salt and SHA-256(salt || SHA-256(access token)) of the owner
 - 'a<offset>' -> int
   number of records with score MinScore + offset
 - 'd<offset>' -> int
   number of records with score MaxScore - offset

# Statistics
Histogram namespaces are ordered by score in ascending ('a') and descending
('d') order, so the new minimum or maximum after a removal is the first key
found by prefix.
*/
