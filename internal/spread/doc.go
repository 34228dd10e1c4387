// Package spread builds the ordered ffmpeg command chain for one spread.
//
// Cards are split into bounded chunks so no invocation takes more than
// ChunkSize+1 inputs. The first chunk is the irregular remainder and every
// later chunk holds exactly ChunkSize cards. Two chains are emitted over the
// same chunk plan: an audio chain that mixes card clips into the ambiance bed,
// and a video chain that composites scaled, rotated clips onto the template
// background. Each chunk consumes the artifact produced by the one before it,
// so the queue order is also its dependency order. An optional favorite
// overlay and a final mux step close the chain.
//
// Build is pure. Runtime progress and timing live on the Queue, which the
// render package updates while executing.
package spread
