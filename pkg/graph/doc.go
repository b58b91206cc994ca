/*
Package graph builds the immutable flow graph of a training section.

Nodes live in an arena and are addressed by domain.NodeID. Construction order
(Instruction, cases in definition order, Total) is kept for listings, while
the traversal order is defined only by the explicit next references.
*/
package graph
